package common

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

const (
	// ReplicasMax is the largest number of addresses a client may be configured with
	ReplicasMax = 6
	// DefaultPort is used for addresses that do not carry a port
	DefaultPort = 3001
	// DefaultHost is used for addresses that only consist of a port
	DefaultHost = "127.0.0.1"
)

// SplitAddresses splits a comma separated address list and enforces the
// generic limits (at least one non-empty entry, at most ReplicasMax entries).
// The entries are returned trimmed but otherwise unchanged.
func SplitAddresses(addresses string) ([]string, error) {
	if strings.TrimSpace(addresses) == "" {
		return nil, NewInitializationError(InitAddressInvalid, "no address given")
	}

	parts := strings.Split(addresses, ",")
	if len(parts) > ReplicasMax {
		return nil, NewInitializationError(InitAddressLimitExceeded, "%d addresses given, at most %d allowed", len(parts), ReplicasMax)
	}

	result := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, NewInitializationError(InitAddressInvalid, "empty entry in address list %q", addresses)
		}
		result = append(result, part)
	}
	return result, nil
}

// ParseAddresses splits and normalizes a list of cluster addresses into
// host:port form. Accepted forms for every entry are:
//
//	3000             -> 127.0.0.1:3000
//	example.org      -> example.org:3001
//	10.0.0.1:3000    -> 10.0.0.1:3000
//	[::1]:3000       -> [::1]:3000
//	::1              -> [::1]:3001
func ParseAddresses(addresses string) ([]string, error) {
	parts, err := SplitAddresses(addresses)
	if err != nil {
		return nil, err
	}

	result := make([]string, len(parts))
	for i, part := range parts {
		normalized, err := parseAddress(part)
		if err != nil {
			return nil, NewInitializationError(InitAddressInvalid, "invalid address %q: %v", part, err)
		}
		result[i] = normalized
	}
	return result, nil
}

// parseAddress normalizes a single address
func parseAddress(address string) (string, error) {
	// port only
	if isDigits(address) {
		port, err := parsePort(address)
		if err != nil {
			return "", err
		}
		return net.JoinHostPort(DefaultHost, strconv.Itoa(port)), nil
	}

	// bracketed ipv6, with or without port
	if strings.HasPrefix(address, "[") {
		if strings.HasSuffix(address, "]") {
			host := address[1 : len(address)-1]
			if net.ParseIP(host) == nil {
				return "", fmt.Errorf("invalid ipv6 address")
			}
			return net.JoinHostPort(host, strconv.Itoa(DefaultPort)), nil
		}
		return splitHostPort(address)
	}

	switch strings.Count(address, ":") {
	case 0:
		// bare host
		return net.JoinHostPort(address, strconv.Itoa(DefaultPort)), nil
	case 1:
		return splitHostPort(address)
	default:
		// bare ipv6 without port
		if net.ParseIP(address) == nil {
			return "", fmt.Errorf("invalid ipv6 address")
		}
		return net.JoinHostPort(address, strconv.Itoa(DefaultPort)), nil
	}
}

func splitHostPort(address string) (string, error) {
	host, portStr, err := net.SplitHostPort(address)
	if err != nil {
		return "", err
	}
	if host == "" {
		return "", fmt.Errorf("missing host")
	}
	port, err := parsePort(portStr)
	if err != nil {
		return "", err
	}
	return net.JoinHostPort(host, strconv.Itoa(port)), nil
}

func parsePort(value string) (int, error) {
	port, err := strconv.Atoi(value)
	if err != nil || port < 1 || port > 65535 {
		return 0, fmt.Errorf("invalid port %q", value)
	}
	return port, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
