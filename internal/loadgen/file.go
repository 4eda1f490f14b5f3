package loadgen

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// maxWeight bounds class and task weights read from a profile file
const maxWeight = 1000

// ProfileFile is the YAML form of a load profile. Absent fields keep their defaults.
//
//	users: 10
//	spawn_rate: 2
//	run_time: 1m
//	wait_min: 500ms
//	wait_max: 2s
//	classes:
//	  openbmc:
//	    weight: 3
//	    tasks: {get_system_info: 3, get_thermal_data: 2, get_session_info: 1}
//	  weather:
//	    weight: 0
type ProfileFile struct {
	Name      string               `yaml:"name"`
	Users     int                  `yaml:"users"`
	SpawnRate float64              `yaml:"spawn_rate"`
	RunTime   time.Duration        `yaml:"run_time"`
	WaitMin   *time.Duration       `yaml:"wait_min"`
	WaitMax   *time.Duration       `yaml:"wait_max"`
	Classes   map[string]ClassFile `yaml:"classes"`
}

// ClassFile overrides one user class
type ClassFile struct {
	Weight *int           `yaml:"weight"`
	Tasks  map[string]int `yaml:"tasks"`
}

// LoadProfileFile reads and decodes a YAML profile, rejecting unknown keys
func LoadProfileFile(path string) (*ProfileFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	return ParseProfileFile(data)
}

// ParseProfileFile decodes a YAML profile, rejecting unknown keys
func ParseProfileFile(data []byte) (*ProfileFile, error) {
	var pf ProfileFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&pf); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	return &pf, nil
}

// apply overrides shape, class weights and task weights.
// Class and task names must be known.
func (pf *ProfileFile) apply(p *Profile, classWeights Weights, taskWeights map[string]Weights) error {
	if pf.Name != "" {
		p.Name = pf.Name
	}
	if pf.Users > 0 {
		p.Users = pf.Users
	}
	if pf.SpawnRate > 0 {
		p.SpawnRate = pf.SpawnRate
	}
	if pf.RunTime > 0 {
		p.RunTime = pf.RunTime
	}
	if pf.WaitMin != nil {
		p.WaitMin = *pf.WaitMin
	}
	if pf.WaitMax != nil {
		p.WaitMax = *pf.WaitMax
	}

	for class, cf := range pf.Classes {
		tasks, ok := taskWeights[class]
		if !ok {
			return fmt.Errorf("unknown user class %q", class)
		}
		if cf.Weight != nil {
			if *cf.Weight < 0 || *cf.Weight > maxWeight {
				return fmt.Errorf("class %s: weight %d out of range 0..%d", class, *cf.Weight, maxWeight)
			}
			classWeights[class] = *cf.Weight
		}
		for task, w := range cf.Tasks {
			if _, ok := tasks[task]; !ok {
				return fmt.Errorf("class %s: unknown task %q", class, task)
			}
			if w < 0 || w > maxWeight {
				return fmt.Errorf("class %s: task %s: weight %d out of range 0..%d", class, task, w, maxWeight)
			}
			tasks[task] = w
		}
	}
	return nil
}
