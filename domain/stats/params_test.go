package stats

import "testing"

func TestDefaultParamsValidate(t *testing.T) {
	if err := DefaultParams().Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestParamsValidate_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Params)
	}{
		{"threshold zero", func(p *Params) { p.ClusterThreshold = 0 }},
		{"threshold one", func(p *Params) { p.ClusterThreshold = 1 }},
		{"no permutations", func(p *Params) { p.NPermutations = 0 }},
		{"alpha negative", func(p *Params) { p.Alpha = -0.05 }},
		{"alpha one", func(p *Params) { p.Alpha = 1 }},
		{"bad cluster stat", func(p *Params) { p.ClusterStat = "extent" }},
		{"bad test type", func(p *Params) { p.TestType = "welch" }},
		{"bad alternative", func(p *Params) { p.Alternative = "both" }},
		{"zero cap", func(p *Params) { p.MaxClustersChecked = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := DefaultParams()
			tc.mutate(&p)
			if err := p.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
