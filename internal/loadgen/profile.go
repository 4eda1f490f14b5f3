// Package loadgen runs weighted-task load profiles with simulated users.
package loadgen

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Task is one weighted unit of work of a simulated user
type Task struct {
	Name   string
	Weight int
	Run    func(ctx context.Context) error
}

// User is one simulated user instance
type User interface {
	Tasks() []Task
}

// Starter is implemented by users with a setup request, run and recorded before the first task
type Starter interface {
	OnStart(ctx context.Context) error
}

// Stopper is implemented by users releasing resources when the run ends
type Stopper interface {
	OnStop(ctx context.Context) error
}

// UserClass creates users of one kind. Users are spread across classes by Weight.
type UserClass struct {
	Name   string
	Weight int
	New    func() User
}

// Profile describes a whole load run
type Profile struct {
	Name           string
	Users          int
	SpawnRate      float64 // users started per second
	RunTime        time.Duration
	WaitMin        time.Duration
	WaitMax        time.Duration
	RequestTimeout time.Duration
	Classes        []UserClass
}

// Validate rejects profiles the engine cannot run
func (p *Profile) Validate() error {
	if p.Users <= 0 {
		return fmt.Errorf("users must be positive, got %d", p.Users)
	}
	if p.SpawnRate <= 0 {
		return fmt.Errorf("spawn rate must be positive, got %g", p.SpawnRate)
	}
	if p.RunTime <= 0 {
		return fmt.Errorf("run time must be positive, got %s", p.RunTime)
	}
	if p.WaitMin < 0 || p.WaitMax < p.WaitMin {
		return fmt.Errorf("invalid wait range %s..%s", p.WaitMin, p.WaitMax)
	}
	if p.classWeight() == 0 {
		return errors.New("profile has no user class with a positive weight")
	}
	return nil
}

// classWeight sums the weights of classes with a positive weight
func (p *Profile) classWeight() int {
	total := 0
	for _, c := range p.Classes {
		if c.Weight > 0 {
			total += c.Weight
		}
	}
	return total
}

// classFor returns the class of the i-th spawned user. Users cycle through
// the classes, each class taking as many consecutive slots as its weight.
func (p *Profile) classFor(i int) UserClass {
	r := i % p.classWeight()
	for _, c := range p.Classes {
		if c.Weight <= 0 {
			continue
		}
		if r < c.Weight {
			return c
		}
		r -= c.Weight
	}
	return UserClass{}
}

// totalWeight sums the weights of tasks with a positive weight
func totalWeight(tasks []Task) int {
	total := 0
	for _, t := range tasks {
		if t.Weight > 0 {
			total += t.Weight
		}
	}
	return total
}

// pickTask returns the task covering r in [0, totalWeight)
func pickTask(tasks []Task, r int) (Task, bool) {
	for _, t := range tasks {
		if t.Weight <= 0 {
			continue
		}
		if r < t.Weight {
			return t, true
		}
		r -= t.Weight
	}
	return Task{}, false
}
