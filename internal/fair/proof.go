package fair

// Proof is the public document that lets anyone reproduce a draw. It is the
// bit-exact wire contract of the proof endpoint: field names and nesting are
// fixed. Before the seed is revealed only the commitment side is populated
// (RevealedSeed empty, Computed and OK nil).
type Proof struct {
	GiveawayID     int64           `json:"giveawayId"`
	SeedCommitHash string          `json:"seedCommitHash"`
	RevealedSeed   string          `json:"revealedSeed,omitempty"`
	EntriesHash    string          `json:"entriesHash"`
	EntryIDs       []int64         `json:"entryIds"`
	EntryCount     int             `json:"entryCount"`
	LateCommitted  bool            `json:"lateCommitted,omitempty"`
	Computed       *ComputedWinner `json:"computed,omitempty"`
	OK             *bool           `json:"ok,omitempty"`
}

// ComputedWinner carries the recomputed selection values inside a Proof.
type ComputedWinner struct {
	PickHash      string `json:"pickHash"`
	WinnerIndex   int    `json:"winnerIndex"`
	WinnerEntryID int64  `json:"winnerEntryId"`
	WinnerUserID  int64  `json:"winnerUserId"`
}

// Verification is the outcome of independently re-running a proof.
type Verification struct {
	OK         bool
	Reason     string
	Recomputed *Result
}

func failed(reason string) Verification {
	return Verification{OK: false, Reason: reason}
}

// VerifyProof re-runs the selection from the public data in p and compares
// the outcome with the values p claims. It needs nothing beyond the document
// itself, so a third party with no database access can run it.
//
// A mismatch anywhere is a hard fairness signal: either the entry set was
// mutated after selection, the seed does not bind to the commitment, or the
// claimed winner was not produced by the protocol.
func VerifyProof(p *Proof) Verification {
	if p.RevealedSeed == "" {
		return failed("seed not revealed yet")
	}
	if _, err := ParseSeed(p.RevealedSeed); err != nil {
		return failed("revealed seed is malformed")
	}
	if !VerifyCommitment(p.RevealedSeed, p.SeedCommitHash) {
		return failed("revealed seed does not match commitment")
	}

	res, err := Pick(p.RevealedSeed, p.GiveawayID, p.EntryIDs)
	if err != nil {
		return failed("selection not reproducible: " + err.Error())
	}

	if p.EntriesHash != "" && p.EntriesHash != res.EntriesHash {
		return failed("entry set hash mismatch")
	}
	if p.EntryCount != 0 && p.EntryCount != len(p.EntryIDs) {
		return failed("entry count mismatch")
	}

	c := p.Computed
	if c == nil {
		return failed("proof carries no computed winner")
	}
	if c.PickHash != res.PickHash {
		return Verification{OK: false, Reason: "pick hash mismatch", Recomputed: res}
	}
	if c.WinnerIndex != res.WinnerIndex || c.WinnerEntryID != res.WinnerEntryID {
		return Verification{OK: false, Reason: "recomputed winner differs from claimed winner", Recomputed: res}
	}

	return Verification{OK: true, Recomputed: res}
}
