package vmanage

import (
	"net"
	"net/netip"
	"strconv"

	"github.com/cockroachdb/errors"
)

// rawRecord is one loosely-typed element of a dataservice payload. The
// controller populates different field subsets per endpoint and software
// version, so every accessor is presence-checking: absence yields the
// neutral zero value, never an error.
type rawRecord map[string]any

func (r rawRecord) str(key string) string {
	s, _ := r.strOK(key)
	return s
}

func (r rawRecord) strOK(key string) (string, bool) {
	s, ok := r[key].(string)
	return s, ok
}

// integer reads a numeric field. JSON numbers decode as float64; some
// controller versions serialize counters as strings, so those are accepted
// too. Anything else reads as zero.
func (r rawRecord) integer(key string) int {
	switch v := r[key].(type) {
	case float64:
		return int(v)
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func (r rawRecord) float(key string) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func (r rawRecord) boolean(key string) bool {
	switch v := r[key].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	default:
		return false
	}
}

// stringify renders a field that is a string on some controller versions and
// a number on others (vpn-id, group ids).
func (r rawRecord) stringify(key string) string {
	switch v := r[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// addr parses a required address field. A missing or malformed address is a
// fatal error: it signals corrupted controller data, not an empty result.
func (r rawRecord) addr(key string) (netip.Addr, error) {
	s, ok := r.strOK(key)
	if !ok {
		return netip.Addr{}, errors.Newf("record is missing address field %q", key)
	}

	ip, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, errors.Wrapf(err, "invalid address in field %q", key)
	}

	return ip, nil
}

// optionalAddr parses an address field that some records legitimately omit
// (system-ip on unprovisioned devices). Absence yields the invalid zero
// Addr; a present but malformed value is still fatal.
func (r rawRecord) optionalAddr(key string) (netip.Addr, error) {
	if _, ok := r.strOK(key); !ok {
		return netip.Addr{}, nil
	}
	return r.addr(key)
}

// prefixFrom builds the network containing addr from a dotted-quad subnet
// mask. Construction is non-strict: host bits in addr are masked off rather
// than rejected. A non-contiguous mask is fatal.
func prefixFrom(addr netip.Addr, mask string) (netip.Prefix, error) {
	m, err := netip.ParseAddr(mask)
	if err != nil {
		return netip.Prefix{}, errors.Wrapf(err, "invalid subnet mask %q", mask)
	}

	ones, bits := net.IPMask(m.AsSlice()).Size()
	if ones == 0 && bits == 0 {
		return netip.Prefix{}, errors.Newf("non-contiguous subnet mask %q", mask)
	}

	return netip.PrefixFrom(addr, ones).Masked(), nil
}
