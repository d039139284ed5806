package usecase

// OutcomeKind classifies what the gateway told us about a payment.
type OutcomeKind int

const (
	OutcomeCaptured OutcomeKind = iota + 1
	OutcomeFailed
	OutcomeAmbiguous
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeCaptured:
		return "captured"
	case OutcomeFailed:
		return "failed"
	case OutcomeAmbiguous:
		return "ambiguous"
	default:
		return "unknown"
	}
}

// SettlementOutcome is the result of the capture leg of a settlement.
type SettlementOutcome struct {
	Kind   OutcomeKind
	Reason string
	// FailOpen is set when an ambiguous outcome was settled as captured.
	FailOpen bool
}

func Captured() SettlementOutcome {
	return SettlementOutcome{Kind: OutcomeCaptured}
}

func Failed(reason string) SettlementOutcome {
	return SettlementOutcome{Kind: OutcomeFailed, Reason: reason}
}

func Ambiguous(reason string) SettlementOutcome {
	return SettlementOutcome{Kind: OutcomeAmbiguous, Reason: reason}
}

// ApplyFailOpen maps Ambiguous to Captured. Only an explicit gateway failure blocks a settlement.
func ApplyFailOpen(o SettlementOutcome) SettlementOutcome {
	if o.Kind == OutcomeAmbiguous {
		return SettlementOutcome{Kind: OutcomeCaptured, Reason: o.Reason, FailOpen: true}
	}
	return o
}
