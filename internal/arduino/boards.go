package arduino

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.bug.st/serial/enumerator"
)

// Board identifies an attached board: the serial device path, the FQBN
// the compiler should target, and a human-readable label.
type Board struct {
	Port  string `json:"port"`
	FQBN  string `json:"fqbn"`
	Label string `json:"label"`
}

// usbVendorIDs lists USB vendor IDs of Arduino boards and the
// USB-to-serial chips common in clones. Boards on these VIDs are
// reported even when arduino-cli has no matching board entry for them.
var usbVendorIDs = map[string]bool{
	"2341": true, // Arduino LLC
	"1A86": true, // QinHeng CH340/CH341
	"0403": true, // FTDI
	"10C4": true, // Silicon Labs CP210x
	"067B": true, // Prolific PL2303
}

// boardList mirrors the `arduino-cli board list --format json` shape.
type boardList struct {
	DetectedPorts []struct {
		Port struct {
			Address  string `json:"address"`
			Label    string `json:"label"`
			Protocol string `json:"protocol"`
		} `json:"port"`
		MatchingBoards []struct {
			Name string `json:"name"`
			FQBN string `json:"fqbn"`
		} `json:"matching_boards"`
	} `json:"detected_ports"`
}

// Locator discovers attached boards. Results are never cached: physical
// attach/detach can change them between any two calls.
type Locator struct {
	runner      Runner
	defaultFQBN string

	// enumerate is swapped out in tests; the default asks the OS for
	// detailed USB serial port metadata.
	enumerate func() ([]*enumerator.PortDetails, error)
}

// NewLocator returns a Locator using the given runner for arduino-cli
// discovery. Boards that arduino-cli cannot identify (clones) are
// reported with defaultFQBN.
func NewLocator(runner Runner, defaultFQBN string) *Locator {
	return &Locator{
		runner:      runner,
		defaultFQBN: defaultFQBN,
		enumerate:   enumerator.GetDetailedPortsList,
	}
}

// List enumerates attached boards in discovery order: arduino-cli
// detected ports first, then USB serial ports on known Arduino vendor
// IDs that arduino-cli missed. Zero attached boards yields an empty
// (non-nil) slice, not an error; a missing toolchain yields
// ErrToolchainUnavailable.
func (l *Locator) List(ctx context.Context) ([]Board, error) {
	res, err := l.runner.Run(ctx, "board", "list", "--format", "json")
	if err != nil {
		return nil, err
	}

	var parsed boardList
	if err := decodeJSONOutput(res.Lines, &parsed); err != nil {
		return nil, fmt.Errorf("parse board list: %w", err)
	}

	boards := []Board{}
	seen := map[string]bool{}

	for _, dp := range parsed.DetectedPorts {
		addr := dp.Port.Address
		if addr == "" || seen[addr] {
			continue
		}
		// Skip network/bluetooth discovery results; only serial ports
		// can be flashed and monitored here.
		if dp.Port.Protocol != "" && !strings.Contains(dp.Port.Protocol, "serial") {
			continue
		}
		b := Board{Port: addr, FQBN: l.defaultFQBN, Label: dp.Port.Label}
		if len(dp.MatchingBoards) > 0 {
			b.FQBN = dp.MatchingBoards[0].FQBN
			b.Label = dp.MatchingBoards[0].Name
		} else if b.Label == "" {
			b.Label = "Unknown board"
		}
		seen[addr] = true
		boards = append(boards, b)
	}

	// Supplement with USB metadata: clone boards sometimes enumerate as
	// bare serial devices that arduino-cli does not report at all.
	if details, err := l.enumerate(); err == nil {
		for _, d := range details {
			if seen[d.Name] || !d.IsUSB {
				continue
			}
			vid := strings.ToUpper(d.VID)
			label := d.Product
			if !usbVendorIDs[vid] && !strings.Contains(strings.ToLower(label), "arduino") {
				continue
			}
			if label == "" {
				label = "Unknown board"
			}
			seen[d.Name] = true
			boards = append(boards, Board{Port: d.Name, FQBN: l.defaultFQBN, Label: label})
		}
	}

	return boards, nil
}

// Resolve returns the attached board on the given port, or
// ErrBoardNotFound when nothing is attached there.
func (l *Locator) Resolve(ctx context.Context, port string) (Board, error) {
	boards, err := l.List(ctx)
	if err != nil {
		return Board{}, err
	}
	for _, b := range boards {
		if b.Port == port {
			return b, nil
		}
	}
	return Board{}, fmt.Errorf("%w: no board on %s", ErrBoardNotFound, port)
}

// decodeJSONOutput extracts the JSON document from merged process
// output. arduino-cli prints the document to stdout but may emit
// warnings around it, so decoding starts at the first brace.
func decodeJSONOutput(lines []string, dest any) error {
	joined := strings.Join(lines, "\n")
	start := strings.IndexAny(joined, "{[")
	if start < 0 {
		return fmt.Errorf("no JSON in output")
	}
	return json.Unmarshal([]byte(joined[start:]), dest)
}
