package domain

import "time"

// toolCallTimeout caps the time for a single-operation tool handler. It
// leaves headroom over the per-call provider deadline enforced downstream.
const toolCallTimeout = 35 * time.Second

// workflowToolTimeout caps the combined workflow tool, which makes several
// provider calls in sequence.
const workflowToolTimeout = 2 * time.Minute
