package signal

import (
	"encoding/json"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/borgmon/task-minder/pkg/models"
)

// Broadcast targets: each process subscribes to its own subject and sends to
// the peer's.
const (
	TargetApp     = "app"
	TargetService = "service"

	subjectPrefix = "task-minder.actions."
)

// Broadcaster sends and receives action signals over the local NATS broker.
// All sends are fire-and-forget: a down or not-yet-initialized transport is
// a logged no-op, never an error surfaced to the caller.
type Broadcaster struct {
	url string
	nc  *nats.Conn
}

func NewBroadcaster(url string) *Broadcaster {
	return &Broadcaster{url: url}
}

// Connect dials the broker. Reconnects are retried in the background
// indefinitely, so a daemon restart does not strand the app side.
func (b *Broadcaster) Connect() error {
	nc, err := nats.Connect(b.url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return err
	}
	b.nc = nc
	return nil
}

// Send publishes a signal to the target process. Safe on a nil Broadcaster
// and before Connect; both just log and drop, the poll loop is the retry.
func (b *Broadcaster) Send(target string, sig models.Signal) {
	if b == nil || b.nc == nil || !b.nc.IsConnected() {
		log.Printf("Transport not ready, dropping %s to %s", sig.Action, target)
		return
	}

	data, err := json.Marshal(sig)
	if err != nil {
		log.Printf("Unable to marshal signal %s: %v", sig.Action, err)
		return
	}

	if err := b.nc.Publish(subjectPrefix+target, data); err != nil {
		log.Printf("Unable to send %s to %s: %v", sig.Action, target, err)
	}
}

// Subscribe delivers inbound signals for the given target to handler. The
// handler runs on the transport's goroutine and must be safe to call
// concurrently with the poll loop.
func (b *Broadcaster) Subscribe(target string, handler func(models.Signal)) error {
	if b == nil || b.nc == nil {
		log.Printf("Transport not ready, cannot subscribe to %s", target)
		return nil
	}

	_, err := b.nc.Subscribe(subjectPrefix+target, func(msg *nats.Msg) {
		var sig models.Signal
		if err := json.Unmarshal(msg.Data, &sig); err != nil {
			log.Printf("Dropping malformed signal on %s: %v", msg.Subject, err)
			return
		}
		handler(sig)
	})
	return err
}

// Close flushes pending sends and closes the connection.
func (b *Broadcaster) Close() {
	if b == nil || b.nc == nil {
		return
	}
	if b.nc.IsConnected() {
		if err := b.nc.Flush(); err != nil {
			log.Printf("Flush on close failed: %v", err)
		}
	}
	b.nc.Close()
}
