package httputil

import (
	"net"
	"net/http"
	"net/netip"
	"syscall"
	"time"

	"github.com/matzehuels/scormlens/pkg/errors"
)

// publicTransport returns a transport that only connects to public
// addresses. The check runs on the resolved address of every connection,
// so redirects and DNS names pointing inward are refused as well.
func publicTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   refuseNonPublic,
	}
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.Proxy = nil
	t.DialContext = dialer.DialContext
	return t
}

func refuseNonPublic(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "cannot check address %s", host)
	}
	if !IsPublic(addr) {
		return errors.New(errors.ErrCodeInvalidInput, "refusing to download from non-public address %s", addr)
	}
	return nil
}

// IsPublic reports whether addr is a globally routable unicast address.
// Loopback, private, link-local, multicast and unspecified addresses are
// not.
func IsPublic(addr netip.Addr) bool {
	addr = addr.Unmap()
	switch {
	case !addr.IsValid(),
		addr.IsUnspecified(),
		addr.IsLoopback(),
		addr.IsPrivate(),
		addr.IsLinkLocalUnicast(),
		addr.IsLinkLocalMulticast(),
		addr.IsInterfaceLocalMulticast(),
		addr.IsMulticast():
		return false
	}
	return !sharedAddressSpace.Contains(addr)
}

// 100.64.0.0/10, carrier-grade NAT.
var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")
