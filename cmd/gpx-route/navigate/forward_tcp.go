package navigate

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/thejerf/suture/v4"
)

var (
	tcpIncomingConnections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gpxroute",
		Subsystem: "tcp",
		Name:      "incoming_connections_total",
	}, []string{"listen"})
	tcpForwardedMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gpxroute",
		Subsystem: "tcp",
		Name:      "forwarded_messages_total",
	}, []string{"listen"})
	tcpCurrentConnections = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "gpxroute",
		Subsystem: "tcp",
		Name:      "current_connections",
	}, []string{"listen"})
)

// tcpForwarder writes every input line to all currently connected
// clients. Clients that fail a write are dropped.
type tcpForwarder struct {
	input <-chan string
	addr  string
	conns []net.Conn
	mut   sync.Mutex
}

func forwardTCP(input <-chan string, addr string) suture.Service {
	sup := suture.NewSimple("tcp-forwarder-supervisor/" + addr)
	f := &tcpForwarder{
		input: input,
		addr:  addr,
	}
	sup.Add(f)
	l := &tcpListener{
		addr:      addr,
		forwarder: f,
	}
	sup.Add(l)
	return sup
}

func (f *tcpForwarder) String() string {
	return fmt.Sprintf("tcp-forwarder(%s)@%p", f.addr, f)
}

func (f *tcpForwarder) addConn(conn net.Conn) {
	f.mut.Lock()
	f.conns = append(f.conns, conn)
	tcpCurrentConnections.WithLabelValues(f.addr).Set(float64(len(f.conns)))
	f.mut.Unlock()
}

func (f *tcpForwarder) Serve(ctx context.Context) error {
	tcpForwardedMessages.WithLabelValues(f.addr)
	tcpCurrentConnections.WithLabelValues(f.addr)

	defer func() {
		f.mut.Lock()
		for _, conn := range f.conns {
			_ = conn.Close()
		}
		f.conns = nil
		f.mut.Unlock()
	}()

	for {
		select {
		case line := <-f.input:
			f.mut.Lock()
			for i := 0; i < len(f.conns); i++ {
				_ = f.conns[i].SetWriteDeadline(time.Now().Add(time.Second))
				if _, err := fmt.Fprintf(f.conns[i], "%s\r\n", line); err != nil {
					_ = f.conns[i].Close()
					f.conns = append(f.conns[:i], f.conns[i+1:]...)
					i--
					continue
				}
				tcpForwardedMessages.WithLabelValues(f.addr).Inc()
			}
			tcpCurrentConnections.WithLabelValues(f.addr).Set(float64(len(f.conns)))
			f.mut.Unlock()

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

type tcpListener struct {
	addr      string
	forwarder *tcpForwarder
	ready     chan net.Addr
}

func (t *tcpListener) String() string {
	return fmt.Sprintf("tcp-listener(%s)@%p", t.addr, t)
}

func (t *tcpListener) Serve(ctx context.Context) error {
	l, err := net.Listen("tcp", t.addr)
	if err != nil {
		return err
	}
	defer l.Close()

	go func() {
		<-ctx.Done()
		_ = l.Close()
	}()

	if t.ready != nil {
		t.ready <- l.Addr()
	}

	tcpIncomingConnections.WithLabelValues(t.addr)

	for {
		conn, err := l.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		t.forwarder.addConn(conn)
		tcpIncomingConnections.WithLabelValues(t.addr).Inc()
	}
}
