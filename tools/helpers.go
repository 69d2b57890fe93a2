package tools

import (
	"fmt"
	"strings"

	gomail "github.com/emersion/go-message/mail"
	"github.com/willmeyers/jmap-mcp-server/jmap"
)

// parseAddressList extracts a string, []interface{} of strings, or
// []interface{} of {"email","name"} objects into a validated address list.
// Returns a non-nil error if the value is present but invalid.
func parseAddressList(args map[string]interface{}, key string) ([]jmap.Address, error) {
	val, ok := args[key]
	if !ok || val == nil {
		return nil, nil
	}

	var out []jmap.Address
	switch v := val.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		list, err := gomail.ParseAddressList(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s email address '%s': %v", key, v, err)
		}
		for _, a := range list {
			out = append(out, jmap.Address{Name: a.Name, Email: a.Address})
		}
	case []interface{}:
		for _, item := range v {
			addr, err := parseAddressItem(key, item)
			if err != nil {
				return nil, err
			}
			if addr != nil {
				out = append(out, *addr)
			}
		}
	default:
		return nil, fmt.Errorf("%s must be a string or array of addresses", key)
	}

	return out, nil
}

func parseAddressItem(key string, item interface{}) (*jmap.Address, error) {
	switch v := item.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		a, err := gomail.ParseAddress(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s email address '%s': %v", key, v, err)
		}
		return &jmap.Address{Name: a.Name, Email: a.Address}, nil
	case map[string]interface{}:
		email, _ := v["email"].(string)
		name, _ := v["name"].(string)
		if _, err := gomail.ParseAddress(email); err != nil {
			return nil, fmt.Errorf("invalid %s email address '%s': %v", key, email, err)
		}
		return &jmap.Address{Name: name, Email: email}, nil
	default:
		return nil, fmt.Errorf("invalid %s address type: %T", key, item)
	}
}

// requireAddressList is like parseAddressList but returns an error if the result is empty.
func requireAddressList(args map[string]interface{}, key string) ([]jmap.Address, error) {
	addrs, err := parseAddressList(args, key)
	if err != nil {
		return nil, err
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("at least one '%s' address is required", key)
	}
	return addrs, nil
}

func stringArg(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return strings.TrimSpace(s)
}

func boolArg(args map[string]interface{}, key string, def bool) bool {
	if b, ok := args[key].(bool); ok {
		return b
	}
	return def
}

func intArg(args map[string]interface{}, key string, def int) int {
	if n, ok := args[key].(float64); ok {
		return int(n)
	}
	return def
}
