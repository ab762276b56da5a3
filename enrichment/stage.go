package enrichment

// Stage is a step of the enrichment state machine.
type Stage string

const (
	StageReceived     Stage = "RECEIVED"
	StageAnalyzing    Stage = "ANALYZING"
	StageSummarizing  Stage = "SUMMARIZING"
	StageTranslating  Stage = "TRANSLATING"
	StageChunkWritten Stage = "CHUNK_WRITTEN"
	StageTagging      Stage = "TAGGING"
	StageIndexed      Stage = "INDEXED"
	StageDone         Stage = "DONE"
	StageErrored      Stage = "ERRORED"
)

// Phase is one of the two independently failing halves of a job.
type Phase string

const (
	// PhaseContent covers RECEIVED through CHUNK_WRITTEN.
	PhaseContent Phase = "content"

	// PhaseIndex covers TAGGING through INDEXED.
	PhaseIndex Phase = "index"
)
