package shutdown

import (
	"cmp"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"
)

// processNotifier is the single registration point for OS notifications.
// signal.Notify is installed while at least one subscription is open.
var processNotifier = newNotifier(terminateSignals, interruptSignals)

// notifier fans delivered OS signals out to subscriptions.
type notifier struct {
	terminate []os.Signal
	interrupt []os.Signal

	// notify and stop default to signal.Notify and signal.Stop.
	notify func(c chan<- os.Signal, sig ...os.Signal)
	stop   func(c chan<- os.Signal)

	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]*subscription
	ch     chan os.Signal
	done   chan struct{}

	// terminating is closed when the running terminate delivery, if any,
	// has finished including its exit hook.
	terminating chan struct{}
}

type subscription struct {
	id          uint64
	n           *notifier
	onTerminate func(os.Signal)
	onInterrupt func(os.Signal)
	exit        func(os.Signal)
	logger      *slog.Logger
	once        sync.Once
}

func newNotifier(terminate, interrupt []os.Signal) *notifier {
	return &notifier{
		terminate: terminate,
		interrupt: interrupt,
		notify:    signal.Notify,
		stop:      signal.Stop,
		subs:      make(map[uint64]*subscription),
	}
}

// subscribe registers the handlers. The first subscription starts intercepting
// the signals, which also suppresses their default action. A nil logger means
// slog.Default().
func (n *notifier) subscribe(onTerminate, onInterrupt, exit func(os.Signal), logger *slog.Logger) *subscription {
	if logger == nil {
		logger = slog.Default()
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	sub := &subscription{
		id:          n.nextID,
		n:           n,
		onTerminate: onTerminate,
		onInterrupt: onInterrupt,
		exit:        exit,
		logger:      logger,
	}

	if len(n.subs) == 0 {
		n.ch = make(chan os.Signal, 1)
		n.done = make(chan struct{})
		n.notify(n.ch, slices.Concat(n.terminate, n.interrupt)...)
		go n.loop(n.ch, n.done)
	}
	n.subs[sub.id] = sub
	return sub
}

// close removes exactly this subscription. Closing the last one restores the
// default signal behaviour. While a terminate signal is being delivered close
// waits for the delivery, exit hook included, so a terminate received by an
// open subscription always ends in the hook. It must not be called from a
// handler.
func (s *subscription) close() {
	s.once.Do(func() {
		n := s.n
		n.mu.Lock()
		wait := n.terminating
		delete(n.subs, s.id)
		if len(n.subs) == 0 && n.ch != nil {
			n.stop(n.ch)
			close(n.done)
			n.ch, n.done = nil, nil
		}
		n.mu.Unlock()

		if wait != nil {
			<-wait
		}
	})
}

func (n *notifier) subscriptions() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}

func (n *notifier) loop(ch <-chan os.Signal, done <-chan struct{}) {
	for {
		select {
		case sig := <-ch:
			n.deliver(sig)
		case <-done:
			return
		}
	}
}

// deliver runs the matching handler of every subscription concurrently and
// waits for all of them. For terminate signals the first registered exit hook
// runs afterwards.
func (n *notifier) deliver(sig os.Signal) {
	terminate := slices.Contains(n.terminate, sig)

	n.mu.Lock()
	subs := make([]*subscription, 0, len(n.subs))
	for _, s := range n.subs {
		subs = append(subs, s)
	}
	var done chan struct{}
	if terminate && len(subs) > 0 {
		done = make(chan struct{})
		n.terminating = done
	}
	n.mu.Unlock()
	if len(subs) == 0 {
		return
	}
	if done != nil {
		defer func() {
			n.mu.Lock()
			if n.terminating == done {
				n.terminating = nil
			}
			n.mu.Unlock()
			close(done)
		}()
	}
	slices.SortFunc(subs, func(a, b *subscription) int {
		return cmp.Compare(a.id, b.id)
	})

	subs[0].logger.Info("received OS signal",
		"signal", sig.String(),
		"listeners", len(subs),
	)

	var g errgroup.Group
	for _, s := range subs {
		h := s.onInterrupt
		if terminate {
			h = s.onTerminate
		}
		if h == nil {
			continue
		}
		g.Go(func() error {
			h(sig)
			return nil
		})
	}
	_ = g.Wait()

	if !terminate {
		return
	}
	for _, s := range subs {
		if s.exit != nil {
			s.exit(sig)
			return
		}
	}
}
