package pipeline

// State names the stage a renewal run is currently in. Transitions are
// strictly sequential; Failed is terminal and reachable from any stage.
type State string

const (
	// StateIdle is the state of a pipeline that has not started yet.
	StateIdle State = "idle"

	// StateAuthenticating verifies the cloud identity can mint tokens.
	StateAuthenticating State = "authenticating"

	// StateRegistering ensures the ACME account exists and is valid.
	StateRegistering State = "registering"

	// StateChallenging creates the order and publishes the challenge response.
	StateChallenging State = "challenging"

	// StateAwaitingValidation polls until the CA validates the challenge.
	StateAwaitingValidation State = "awaiting_validation"

	// StateFinalizing submits the CSR to the order's finalize endpoint.
	StateFinalizing State = "finalizing"

	// StateAwaitingCertificate waits for issuance and downloads the chain.
	StateAwaitingCertificate State = "awaiting_certificate"

	// StateInstalling replaces the certificate on the gateway.
	StateInstalling State = "installing"

	// StateDone is the terminal success state.
	StateDone State = "done"

	// StateFailed is the terminal failure state.
	StateFailed State = "failed"
)

func (s State) String() string { return string(s) }
