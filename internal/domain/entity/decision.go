package entity

// Device decision reasons.
const (
	ReasonMissingCredentials = "MISSING_CREDENTIALS"
	ReasonUserNotFound       = "USER_NOT_FOUND"
	ReasonNoDeviceRegistered = "NO_DEVICE_REGISTERED"
	ReasonDeviceMismatch     = "DEVICE_MISMATCH"
	ReasonConcurrentSession  = "CONCURRENT_SESSION"
	ReasonDeviceClaimed      = "DEVICE_CLAIMED"
)

// Access decision reasons.
const (
	ReasonCountryBlocked = "COUNTRY_BLOCKED"
	ReasonNotEntitled    = "NOT_ENTITLED"
)

// DeviceDecision is the device guard's verdict.
type DeviceDecision struct {
	Valid    bool   `json:"valid"`
	Reason   string `json:"reason,omitempty"`
	Migrated bool   `json:"migrated,omitempty"`
}

// Availability is the pricing resolver's verdict for one content in one country.
type Availability struct {
	Available bool    `json:"available"`
	Price     float64 `json:"price"`
	Currency  string  `json:"currency"`
	Reason    string  `json:"reason,omitempty"`
	// Degraded is set when a lookup failed and the content was let through unfiltered.
	Degraded bool `json:"degraded,omitempty"`
}
