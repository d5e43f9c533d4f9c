package domain

// ProcessStage represents one step of garment manufacturing
type ProcessStage string

const (
	StageCutting    ProcessStage = "cutting"
	StageStitching  ProcessStage = "stitching"
	StageWashing    ProcessStage = "washing"
	StagePrinting   ProcessStage = "printing"
	StageEmbroidery ProcessStage = "embroidery"
	StageFinishing  ProcessStage = "finishing"
	StagePacking    ProcessStage = "packing"
)

// IsValid checks if the process stage is valid
func (p ProcessStage) IsValid() bool {
	switch p {
	case StageCutting, StageStitching, StageWashing, StagePrinting,
		StageEmbroidery, StageFinishing, StagePacking:
		return true
	default:
		return false
	}
}

// String returns the string representation of the process stage
func (p ProcessStage) String() string {
	return string(p)
}

// AllStages lists every process stage in manufacturing order
func AllStages() []ProcessStage {
	return []ProcessStage{
		StageCutting, StageStitching, StageWashing, StagePrinting,
		StageEmbroidery, StageFinishing, StagePacking,
	}
}
