package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xavierca1/contractorconnect/internal/entity"
)

const DefaultUpcomingLimit = 10

type StageCount struct {
	Stage entity.Stage
	Count int
}

// StageCounts always holds every stage, in pipeline order, and encodes as a
// JSON object with keys in that order.
type StageCounts []StageCount

func newStageCounts() StageCounts {
	out := make(StageCounts, len(entity.Stages))
	for i, s := range entity.Stages {
		out[i] = StageCount{Stage: s}
	}
	return out
}

func (sc StageCounts) Get(s entity.Stage) int {
	for _, c := range sc {
		if c.Stage == s {
			return c.Count
		}
	}
	return 0
}

func (sc StageCounts) Total() int {
	total := 0
	for _, c := range sc {
		total += c.Count
	}
	return total
}

func (sc StageCounts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range sc {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Stage.String())
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(c.Count))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type UpcomingLead struct {
	*entity.Lead
	AppointmentAt time.Time `json:"appointment_at"`
}

type DashboardOutput struct {
	TotalLeads int `json:"total_leads"`
	// PipelineValue sums estimated_value over every lead, Closed Lost
	// included. Callers wanting the open pipeline must filter themselves.
	PipelineValue decimal.Decimal `json:"pipeline_value"`
	ByStage       StageCounts     `json:"by_stage"`
	Upcoming      []UpcomingLead  `json:"upcoming"`
}

// DashboardUseCase recomputes the pipeline summary on every call.
type DashboardUseCase struct {
	Leads         entity.LeadRepositoryInterface
	Location      *time.Location
	UpcomingLimit int
	Now           func() time.Time
}

func NewDashboardUseCase(leads entity.LeadRepositoryInterface, loc *time.Location) *DashboardUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardUseCase{
		Leads:         leads,
		Location:      loc,
		UpcomingLimit: DefaultUpcomingLimit,
		Now:           time.Now,
	}
}

func (uc *DashboardUseCase) Execute(ctx context.Context, id entity.Identity) (*DashboardOutput, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	leads, err := uc.Leads.List(ctx, id.UserID, entity.LeadFilter{})
	if err != nil {
		return nil, storageError("failed to list leads", err)
	}
	return Aggregate(leads, uc.Now(), uc.Location, uc.UpcomingLimit), nil
}

// Aggregate computes the dashboard in one pass over leads. Appointments that
// are empty, unparseable or not after now are left out of Upcoming.
func Aggregate(leads []*entity.Lead, now time.Time, loc *time.Location, limit int) *DashboardOutput {
	out := &DashboardOutput{
		TotalLeads:    len(leads),
		PipelineValue: decimal.Zero,
		ByStage:       newStageCounts(),
		Upcoming:      []UpcomingLead{},
	}

	for _, l := range leads {
		out.PipelineValue = out.PipelineValue.Add(l.EstimatedValue)
		for i := range out.ByStage {
			if out.ByStage[i].Stage == l.Stage {
				out.ByStage[i].Count++
				break
			}
		}
		if at, ok := l.AppointmentAt(loc); ok && at.After(now) {
			out.Upcoming = append(out.Upcoming, UpcomingLead{Lead: l, AppointmentAt: at})
		}
	}

	sort.SliceStable(out.Upcoming, func(i, j int) bool {
		return out.Upcoming[i].AppointmentAt.Before(out.Upcoming[j].AppointmentAt)
	})
	if limit > 0 && len(out.Upcoming) > limit {
		out.Upcoming = out.Upcoming[:limit]
	}
	return out
}
