package fair

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"math/big"
	"sort"
	"strconv"
	"strings"
)

// ErrNoEntries is returned by Pick for an empty entry set. Callers treat it
// as the terminal "ended, no winner possible" state, not as a failure.
var ErrNoEntries = errors.New("no entries to pick from")

// Result is the full pick record for one selection: every value a verifier
// needs to reproduce the draw.
type Result struct {
	EntryIDsCSV   string
	EntriesHash   string
	PickHash      string
	WinnerIndex   int
	WinnerEntryID int64
}

// CanonicalEntryIDs returns a sorted ascending copy of ids. Entry ids are
// assigned monotonically by the store, so ascending order is insertion order.
func CanonicalEntryIDs(ids []int64) []int64 {
	sorted := make([]int64, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted
}

// EntryIDsCSV produces the canonical serialization of an entry set: ids
// sorted ascending, formatted as decimal, joined with ",". This exact string
// is what gets hashed; the separator and order are part of the protocol.
func EntryIDsCSV(ids []int64) string {
	sorted := CanonicalEntryIDs(ids)
	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

// EntriesHash is the seed-independent audit hash of the canonical entry set.
func EntriesHash(csv string) string {
	sum := sha256.Sum256([]byte(csv))
	return hex.EncodeToString(sum[:])
}

// PickHash computes SHA-256 over "seedHex|giveawayID|entryIdsCsv".
func PickHash(seedHex string, giveawayID int64, entryIDsCSV string) string {
	msg := seedHex + "|" + strconv.FormatInt(giveawayID, 10) + "|" + entryIDsCSV
	sum := sha256.Sum256([]byte(msg))
	return hex.EncodeToString(sum[:])
}

// WinnerIndex interprets a hex pick hash as an unsigned big integer and
// reduces it modulo n. The full 256-bit digest goes through math/big;
// truncating to a machine word first would diverge from other
// implementations of the protocol.
func WinnerIndex(pickHash string, n int) (int, error) {
	if n < 1 {
		return 0, ErrNoEntries
	}
	v, ok := new(big.Int).SetString(pickHash, 16)
	if !ok {
		return 0, errors.New("pick hash is not valid hex")
	}
	idx := new(big.Int).Mod(v, big.NewInt(int64(n)))
	return int(idx.Int64()), nil
}

// Pick deterministically selects a winner from entryIDs using the revealed
// seed and the giveaway identifier. The same inputs always produce the same
// Result; that determinism is the property the whole protocol rests on.
func Pick(seedHex string, giveawayID int64, entryIDs []int64) (*Result, error) {
	if len(entryIDs) == 0 {
		return nil, ErrNoEntries
	}

	sorted := CanonicalEntryIDs(entryIDs)
	csv := EntryIDsCSV(sorted)
	pickHash := PickHash(seedHex, giveawayID, csv)

	idx, err := WinnerIndex(pickHash, len(sorted))
	if err != nil {
		return nil, err
	}

	return &Result{
		EntryIDsCSV:   csv,
		EntriesHash:   EntriesHash(csv),
		PickHash:      pickHash,
		WinnerIndex:   idx,
		WinnerEntryID: sorted[idx],
	}, nil
}
