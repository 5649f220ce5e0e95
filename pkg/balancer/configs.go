package balancer

import (
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/topicbalance/pkg/balancer/pickers"
	"github.com/segmentio/topicbalance/pkg/util"
	log "github.com/sirupsen/logrus"
)

// Keys recognized in the raw configuration map of an AlgorithmConfig.
const (
	// AllowedTopicsRegexKey restricts the topics whose replicas may be moved. The pattern
	// must match the whole topic name.
	AllowedTopicsRegexKey = "allowed-topics-regex"

	// AllowedBrokersRegexKey restricts the brokers that replicas may be moved from or to. The
	// pattern must match the whole broker ID.
	AllowedBrokersRegexKey = "allowed-brokers-regex"

	IterationLimitKey      = "iteration-limit"
	WorkersKey             = "workers"
	SeedKey                = "seed"
	MinStepKey             = "min-step"
	MaxStepKey             = "max-step"
	LeaderTransferRatioKey = "leader-transfer-ratio"
	ExplorationRateKey     = "exploration-rate"
	PatienceKey            = "patience"
	PickerKey              = "picker"
)

const (
	defaultWorkers             = 1
	defaultMinStep             = 1
	defaultMaxStep             = 3
	defaultLeaderTransferRatio = 0.2
	defaultPatience            = 500
)

// searchParams are the tuning parameters of the greedy search, parsed from the raw
// configuration map.
type searchParams struct {
	iterationLimit      int
	workers             int
	seed                int64
	minStep             int
	maxStep             int
	leaderTransferRatio float64
	explorationRate     float64
	patience            int
	picker              pickers.Picker
	pickerName          string
}

func parseSearchParams(configs map[string]string) (searchParams, error) {
	params := searchParams{
		workers:             defaultWorkers,
		seed:                time.Now().UnixNano(),
		minStep:             defaultMinStep,
		maxStep:             defaultMaxStep,
		leaderTransferRatio: defaultLeaderTransferRatio,
		patience:            defaultPatience,
		pickerName:          pickers.RandomizedName,
	}

	var err error

	for _, key := range util.SortedStringKeys(configs) {
		value := configs[key]

		switch key {
		case AllowedTopicsRegexKey, AllowedBrokersRegexKey:
		case IterationLimitKey:
			params.iterationLimit, err = parseInt(key, value, 0)
		case WorkersKey:
			params.workers, err = parseInt(key, value, 1)
		case SeedKey:
			params.seed, err = strconv.ParseInt(value, 10, 64)
			if err != nil {
				err = fmt.Errorf("Invalid value %q for %s: %+v", value, key, err)
			}
		case MinStepKey:
			params.minStep, err = parseInt(key, value, 1)
		case MaxStepKey:
			params.maxStep, err = parseInt(key, value, 1)
		case LeaderTransferRatioKey:
			params.leaderTransferRatio, err = parseRatio(key, value)
		case ExplorationRateKey:
			params.explorationRate, err = parseRatio(key, value)
		case PatienceKey:
			params.patience, err = parseInt(key, value, 1)
		case PickerKey:
			params.pickerName = value
		default:
			log.Debugf("Ignoring unrecognized balancer config %s", key)
		}
		if err != nil {
			return params, err
		}
	}

	if _, ok := configs[MaxStepKey]; !ok {
		params.maxStep = max(defaultMaxStep, params.minStep)
	}
	if params.maxStep < params.minStep {
		return params, fmt.Errorf(
			"%s (%d) must not be lower than %s (%d)",
			MaxStepKey,
			params.maxStep,
			MinStepKey,
			params.minStep,
		)
	}

	params.picker, err = pickers.New(params.pickerName)
	return params, err
}

func parseInt(key string, value string, minValue int) (int, error) {
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("Invalid value %q for %s: %+v", value, key, err)
	}
	if parsed < minValue {
		return 0, fmt.Errorf("Value of %s must be at least %d, got %d", key, minValue, parsed)
	}
	return parsed, nil
}

func parseRatio(key string, value string) (float64, error) {
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("Invalid value %q for %s: %+v", value, key, err)
	}
	if parsed < 0 || parsed > 1 {
		return 0, fmt.Errorf("Value of %s must be between 0 and 1, got %f", key, parsed)
	}
	return parsed, nil
}

// ValidateConfigs checks the allow patterns and tuning values in the argument configs
// without running a search.
func ValidateConfigs(configs map[string]string) error {
	if _, err := NewConstraints(configs); err != nil {
		return err
	}
	_, err := parseSearchParams(configs)
	return err
}
