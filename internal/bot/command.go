// Package bot turns Telegram messages into Cloudflare operations.
//
// Inbound text is parsed into one of a closed set of Command values; the
// Dispatcher gates every update by chat scope and whitelist membership, runs
// the command against the domain service and replies with plain text.
package bot

import (
	"errors"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Command is a parsed bot command. The set of implementations is closed.
type Command interface {
	// Name is the command token without the leading slash.
	Name() string
	sealed()
}

type (
	Start struct{}
	Help  struct{}

	RegisterDomain struct {
		Domain string
	}

	DNSAdd struct {
		Domain  string
		Type    string
		Content string
	}

	DNSUpdate struct {
		ZoneID   string
		RecordID string
		Type     string
		Content  string
	}

	DNSDelete struct {
		ZoneID   string
		RecordID string
	}

	Domains struct{}
)

func (Start) Name() string          { return "start" }
func (Help) Name() string           { return "help" }
func (RegisterDomain) Name() string { return "register_domain" }
func (DNSAdd) Name() string         { return "dns_add" }
func (DNSUpdate) Name() string      { return "dns_update" }
func (DNSDelete) Name() string      { return "dns_delete" }
func (Domains) Name() string        { return "domains" }

func (Start) sealed()          {}
func (Help) sealed()           {}
func (RegisterDomain) sealed() {}
func (DNSAdd) sealed()         {}
func (DNSUpdate) sealed()      {}
func (DNSDelete) sealed()      {}
func (Domains) sealed()        {}

// ErrNotCommand is returned by Parse for text that is not a known command,
// including commands addressed to another bot. Such updates get no reply.
var ErrNotCommand = errors.New("not a command")

// UsageError is returned by Parse when a known command lacks arguments.
type UsageError struct {
	Command string
	Usage   string
}

func (e *UsageError) Error() string { return e.Usage }

var upper = cases.Upper(language.Und)

// Parse parses a message text. botUsername, when set, is used to ignore
// commands explicitly addressed to another bot ("/start@other_bot").
//
// Extra arguments are ignored. Record types are upper-cased.
func Parse(text, botUsername string) (Command, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return nil, ErrNotCommand
	}
	name := strings.TrimPrefix(fields[0], "/")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		target := name[at+1:]
		name = name[:at]
		if botUsername != "" && !strings.EqualFold(target, botUsername) {
			return nil, ErrNotCommand
		}
	}
	args := fields[1:]

	switch strings.ToLower(name) {
	case "start":
		return Start{}, nil
	case "help":
		return Help{}, nil
	case "register_domain":
		if len(args) < 1 {
			return nil, &UsageError{Command: "register_domain", Usage: usageRegisterDomain}
		}
		return RegisterDomain{Domain: args[0]}, nil
	case "dns_add":
		if len(args) < 3 {
			return nil, &UsageError{Command: "dns_add", Usage: usageDNSAdd}
		}
		return DNSAdd{Domain: args[0], Type: upper.String(args[1]), Content: args[2]}, nil
	case "dns_update":
		if len(args) < 4 {
			return nil, &UsageError{Command: "dns_update", Usage: usageDNSUpdate}
		}
		return DNSUpdate{ZoneID: args[0], RecordID: args[1], Type: upper.String(args[2]), Content: args[3]}, nil
	case "dns_delete":
		if len(args) < 2 {
			return nil, &UsageError{Command: "dns_delete", Usage: usageDNSDelete}
		}
		return DNSDelete{ZoneID: args[0], RecordID: args[1]}, nil
	case "domains":
		return Domains{}, nil
	default:
		return nil, ErrNotCommand
	}
}
