package resume

// Strategy thresholds and quotas.
const (
	// directPassMax is the largest article count that skips selection.
	directPassMax = 5
	// multiBatchMin is the smallest article count that fans out over batches.
	multiBatchMin = 10
	// singleBatchMaxSelected caps the single-batch selection.
	singleBatchMaxSelected = 5
	// targetCandidatePool is the candidate count the multi-batch quotas aim for.
	targetCandidatePool = 8
	minNewsPerBatch     = 2
	batchDivisor        = 4
	minBatchSize        = 15
	maxBatchSize        = 30
)

// Floor, target and escalation constants. The 100/50 thresholds are a strict
// and relaxed pair; only the emergency round uses the relaxed one.
const (
	articleFloor            = 5
	targetCount             = 5
	substantiveChars        = 100
	relaxedSubstantiveChars = 50
	backfillCap             = 20
	backfillMinMargin       = 3
	emergencyExtraMargin    = 2
	maxAdvisoryRangeDays    = 31
)

// Required prompt titles of the tool configuration.
const (
	PromptPrincipal = "Principal"
	PromptSelection = "Selección"
)

// Selection phases, used as metric labels and in log data.
const (
	phaseSingle     = "single"
	phaseMulti      = "multi"
	phaseBackfill   = "backfill"
	phaseEmergency  = "emergency"
	phaseDownselect = "downselect"
)

// Status labels
const (
	statusSuccess = "success"
	statusError   = "error"
	statusFailed  = "failed"
)

// Log data keys
const (
	logKeyRequestID = "request_id"
	logKeyOrg       = "organization_id"
	logKeyStage     = "stage"
	logKeyPhase     = "phase"
	logKeyBatch     = "batch"
	logKeyCount     = "count"
	logKeyError     = "error"

	logKeyDuplicates = "duplicates"
)

// sourceInput labels duplicate drops among the request articles.
const sourceInput = "input"

const hoursPerDay = 24
