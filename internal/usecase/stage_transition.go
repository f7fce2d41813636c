package usecase

import "github.com/xavierca1/contractorconnect/internal/entity"

// ShouldNotify reports whether moving a lead from oldStage to newStage
// triggers the automatic booking notification. Only an entry into Booked
// from a different stage qualifies; creation never does.
func ShouldNotify(oldStage, newStage entity.Stage) bool {
	return newStage == entity.StageBooked && oldStage != entity.StageBooked
}
