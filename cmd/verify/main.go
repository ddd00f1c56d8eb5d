// Command verify re-runs a giveaway proof without touching the server.
// It accepts a proof document from a local file, an HTTP(S) URL or stdin,
// and exits non-zero when the proof does not hold.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/fairdraw/internal/fair"
)

const fetchTimeout = 10 * time.Second

func readProof(source string) ([]byte, error) {
	switch {
	case source == "-":
		return io.ReadAll(os.Stdin)
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		client := &http.Client{Timeout: fetchTimeout}
		resp, err := client.Get(source)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %s", resp.Status)
		}
		return io.ReadAll(resp.Body)
	default:
		return os.ReadFile(source)
	}
}

func run(source string, out io.Writer) error {
	data, err := readProof(source)
	if err != nil {
		return fmt.Errorf("reading proof: %w", err)
	}

	var proof fair.Proof
	if err := json.Unmarshal(data, &proof); err != nil {
		return fmt.Errorf("parsing proof: %w", err)
	}

	v := fair.VerifyProof(&proof)
	if !v.OK {
		return fmt.Errorf("proof FAILED: %s", v.Reason)
	}

	fmt.Fprintf(out, "proof OK: giveaway %d, winner entry %d (index %d of %d)\n",
		proof.GiveawayID, v.Recomputed.WinnerEntryID, v.Recomputed.WinnerIndex, proof.EntryCount)
	return nil
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s <proof.json | url | ->\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0), os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
