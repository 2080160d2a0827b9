package datagen

import (
	"fmt"
	"time"

	"github.com/timescale/tsbs-quick/internal/utils"
)

const (
	FormatInflux = "influx"

	UseCaseCPUOnly   = "cpu-only"
	UseCaseCPUSingle = "cpu-single"
	UseCaseDevops    = "devops"
	UseCaseIoT       = "iot"

	defaultSeed        = 123
	defaultScale       = 4000
	defaultTimeStart   = "2023-06-11T00:00:00Z"
	defaultTimeEnd     = "2023-06-14T00:00:00Z"
	defaultLogInterval = 10 * time.Second
)

// Error messages when validating Params
const (
	errScaleIsZero        = "scale cannot be 0"
	errLogIntervalZero    = "cannot have log interval of 0"
	errBadFormatFmt       = "invalid format specified: '%v'"
	errBadUseFmt          = "invalid use case specified: '%v'"
	errCannotParseTimeFmt = "cannot parse time from string '%s': %v"
	errEndBeforeStart     = "end time before start time"
)

// UseCaseChoices lists the use cases tsbs_generate_data understands.
var UseCaseChoices = []string{UseCaseCPUOnly, UseCaseCPUSingle, UseCaseDevops, UseCaseIoT}

// Formats the greptime loader can consume.
var Formats = []string{FormatInflux}

// Params are the benchmark flags handed to tsbs_generate_data.
type Params struct {
	Use         string
	Seed        int64
	Scale       uint64
	TimeStart   string
	TimeEnd     string
	LogInterval time.Duration
	Format      string
}

// DefaultParams is the fixed dataset every greptime run is benchmarked with.
func DefaultParams() Params {
	return Params{
		Use:         UseCaseCPUOnly,
		Seed:        defaultSeed,
		Scale:       defaultScale,
		TimeStart:   defaultTimeStart,
		TimeEnd:     defaultTimeEnd,
		LogInterval: defaultLogInterval,
		Format:      FormatInflux,
	}
}

// Validate checks that the values of the Params are reasonable.
func (p Params) Validate() error {
	if p.Scale == 0 {
		return fmt.Errorf(errScaleIsZero)
	}
	if p.LogInterval == 0 {
		return fmt.Errorf(errLogIntervalZero)
	}
	if !utils.IsIn(p.Format, Formats) {
		return fmt.Errorf(errBadFormatFmt, p.Format)
	}
	if !utils.IsIn(p.Use, UseCaseChoices) {
		return fmt.Errorf(errBadUseFmt, p.Use)
	}

	start, err := utils.ParseUTCTime(p.TimeStart)
	if err != nil {
		return fmt.Errorf(errCannotParseTimeFmt, p.TimeStart, err)
	}
	end, err := utils.ParseUTCTime(p.TimeEnd)
	if err != nil {
		return fmt.Errorf(errCannotParseTimeFmt, p.TimeEnd, err)
	}
	if !end.After(start) {
		return fmt.Errorf(errEndBeforeStart)
	}
	return nil
}

// Args renders p as tsbs_generate_data flags.
func (p Params) Args() []string {
	return []string{
		"--use-case=" + p.Use,
		fmt.Sprintf("--seed=%d", p.Seed),
		fmt.Sprintf("--scale=%d", p.Scale),
		"--timestamp-start=" + p.TimeStart,
		"--timestamp-end=" + p.TimeEnd,
		"--log-interval=" + p.LogInterval.String(),
		"--format=" + p.Format,
	}
}
