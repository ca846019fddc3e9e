package dataset

import (
	"math"

	"github.com/matzehuels/poolsynth/pkg/config"
)

// SplitPlan is the number of frames to generate for one split.
type SplitPlan struct {
	Split      string
	Count      int
	Background int
}

// Plan sizes every split for cfg, in generation order (train, valid, test).
//
// Below cfg.SplitThreshold every image goes to train and the other splits
// are empty. Otherwise train and valid take floor(total*ratio) and test gets
// the remainder, so the counts always sum to the total.
func Plan(cfg config.Config) []SplitPlan {
	total := max(cfg.TotalImages, 0)

	var train, valid, test int
	if total < cfg.SplitThreshold {
		train = total
	} else {
		train = int(math.Floor(float64(total) * cfg.TrainRatio))
		valid = int(math.Floor(float64(total) * cfg.ValidRatio))
		test = total - train - valid
	}

	counts := map[string]int{
		config.SplitTrain: train,
		config.SplitValid: valid,
		config.SplitTest:  test,
	}
	plans := make([]SplitPlan, 0, len(config.Splits))
	for _, name := range config.Splits {
		n := counts[name]
		plans = append(plans, SplitPlan{
			Split:      name,
			Count:      n,
			Background: BackgroundCount(n, cfg.BackgroundFramePeriod),
		})
	}
	return plans
}

// BackgroundCount returns how many of count frames are background frames:
// ceil(count/period), or 0 when period <= 0.
func BackgroundCount(count, period int) int {
	if period <= 0 || count <= 0 {
		return 0
	}
	return (count + period - 1) / period
}

// PlanTotal sums the frame counts of plans.
func PlanTotal(plans []SplitPlan) int {
	n := 0
	for _, p := range plans {
		n += p.Count
	}
	return n
}
