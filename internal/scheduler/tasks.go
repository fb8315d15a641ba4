package scheduler

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TaskOfferIndexSweep = "shopping.offer_index.sweep"

type OfferIndexSweepPayload struct {
	RequestedAt time.Time `json:"requestedAt"`
}

func NewOfferIndexSweepTask(payload OfferIndexSweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOfferIndexSweep, data), nil
}

func ParseOfferIndexSweepPayload(task *asynq.Task) (OfferIndexSweepPayload, error) {
	var payload OfferIndexSweepPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return OfferIndexSweepPayload{}, err
	}
	return payload, nil
}
