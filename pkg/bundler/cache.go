package bundler

import (
	"encoding/gob"
	"os"
)

// Plan is the resolved build configuration: the module list in declaration
// order, the resolved option values and the selected strategy. configure
// persists it so subsequent builds don't have to evaluate the project script
// again.
type Plan struct {
	Modules  []string
	Options  map[string]string
	Strategy Strategy
}

// WritePlanCache persists the plan to the given file.
func WritePlanCache(file string, plan *Plan) error {
	handle, err := os.Create(file)
	if err != nil {
		return err
	}
	defer handle.Close()

	return gob.NewEncoder(handle).Encode(plan)
}

// ReadPlanCache loads a previously persisted plan.
func ReadPlanCache(file string) (*Plan, error) {
	handle, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer handle.Close()

	plan := new(Plan)
	if err := gob.NewDecoder(handle).Decode(plan); err != nil {
		return nil, err
	}

	return plan, nil
}
