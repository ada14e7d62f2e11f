package navigate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/exp/slog"
)

var (
	udpSentPackets = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gpxroute",
		Subsystem: "udp",
		Name:      "sent_packets_total",
	}, []string{"destination"})
	udpSentBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gpxroute",
		Subsystem: "udp",
		Name:      "sent_bytes_total",
	}, []string{"destination"})
	udpSendErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gpxroute",
		Subsystem: "udp",
		Name:      "send_errors_total",
	}, []string{"destination"})
)

// udpForwarder batches lines into packets of at most maxPacketSize bytes,
// sent when full or after maxDelay.
type udpForwarder struct {
	c             <-chan string
	addrs         []string
	maxPacketSize int
	maxDelay      time.Duration
	logger        *slog.Logger
	buf           bytes.Buffer
}

func forwardUDP(c <-chan string, addrs []string, maxPacketSize int, maxDelay time.Duration, logger *slog.Logger) *udpForwarder {
	return &udpForwarder{
		c:             c,
		addrs:         addrs,
		maxPacketSize: maxPacketSize,
		maxDelay:      maxDelay,
		logger:        logger,
	}
}

func (f *udpForwarder) String() string {
	return fmt.Sprintf("udp-forwarder(%s)@%p", strings.Join(f.addrs, "-"), f)
}

func (f *udpForwarder) Serve(ctx context.Context) error {
	dsts := make([]net.Conn, 0, len(f.addrs))
	for _, addr := range f.addrs {
		dst, err := net.Dial("udp", addr)
		if err != nil {
			f.logger.Warn("Can't forward", "addr", addr, "error", err)
			continue
		}
		defer dst.Close()
		dsts = append(dsts, dst)

		dstAddr := dst.RemoteAddr().String()
		udpSentPackets.WithLabelValues(dstAddr)
		udpSentBytes.WithLabelValues(dstAddr)
		udpSendErrors.WithLabelValues(dstAddr)
	}
	if len(dsts) == 0 {
		return errors.New("no UDP forward destination")
	}

	timer := time.NewTimer(f.maxDelay)
	defer timer.Stop()

	for {
		select {
		case line := <-f.c:
			if f.buf.Len()+len(line)+2 > f.maxPacketSize {
				f.flush(dsts)
				timer.Reset(f.maxDelay)
			}

			fmt.Fprintf(&f.buf, "%s\r\n", line)

		case <-timer.C:
			f.flush(dsts)
			timer.Reset(f.maxDelay)

		case <-ctx.Done():
			f.flush(dsts)
			return ctx.Err()
		}
	}
}

func (f *udpForwarder) flush(dsts []net.Conn) {
	if f.buf.Len() == 0 {
		return
	}
	for _, dst := range dsts {
		_, err := dst.Write(f.buf.Bytes())
		dstAddr := dst.RemoteAddr().String()
		if err != nil {
			udpSendErrors.WithLabelValues(dstAddr).Inc()
			continue
		}
		udpSentPackets.WithLabelValues(dstAddr).Inc()
		udpSentBytes.WithLabelValues(dstAddr).Add(float64(f.buf.Len()))
	}
	f.buf.Reset()
}
