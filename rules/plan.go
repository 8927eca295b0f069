package rules

// Plan is the production posture read from config. The compiler maps it to
// concrete rule parameters.
type Plan struct {
	Name         string `yaml:"name" json:"name"`
	MaxWorkers   int    `yaml:"maxWorkers" json:"maxWorkers"`
	SupplyBuffer int    `yaml:"supplyBuffer" json:"supplyBuffer"`
	// SupplyLimit is the cap past which no more supply is queued.
	SupplyLimit int `yaml:"supplyLimit" json:"supplyLimit"`
}

// DefaultPlan returns the baseline: keep training workers and stay two
// supply ahead.
func DefaultPlan() Plan {
	return Plan{
		Name:         "workers",
		MaxWorkers:   75,
		SupplyBuffer: 2,
		SupplyLimit:  200,
	}
}

// Validate fills unset fields from DefaultPlan and clamps every field to
// its usable range.
func (p *Plan) Validate() {
	def := DefaultPlan()
	if p.Name == "" {
		p.Name = def.Name
	}
	if p.MaxWorkers == 0 {
		p.MaxWorkers = def.MaxWorkers
	}
	if p.SupplyBuffer == 0 {
		p.SupplyBuffer = def.SupplyBuffer
	}
	if p.SupplyLimit == 0 {
		p.SupplyLimit = def.SupplyLimit
	}
	p.MaxWorkers = clampInt(p.MaxWorkers, 1, 200)
	p.SupplyBuffer = clampInt(p.SupplyBuffer, 1, 16)
	p.SupplyLimit = clampInt(p.SupplyLimit, 15, 200)
}

// clampInt restricts v to [min, max].
func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
