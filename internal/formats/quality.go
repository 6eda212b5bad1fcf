package formats

import (
	"errors"
	"strconv"
	"strings"

	"github.com/oleiade/gomme"
)

// QualityKind tells what a parsed quality label measures.
type QualityKind int

const (
	KindUnknown QualityKind = iota
	KindHeight
	KindBitrate
)

// Quality is the numeric value extracted from a free-text quality label.
type Quality struct {
	Kind  QualityKind
	Value int
}

// cinemaHeights maps "2K"/"4K"/"8K" style labels to their pixel height.
var cinemaHeights = map[int]int{
	2: 1440,
	4: 2160,
	8: 4320,
}

var qualityLabel = gomme.Alternative(
	parseBitrateLabel, // e.g., 128kbps
	parseHeightLabel,  // e.g., 720p, 1080p60
	parseCinemaLabel,  // e.g., 4K
	parseBareNumber,   // e.g., 480
)

// ParseQuality extracts a height or a bitrate from labels such as "720p",
// "1080p60 HDR", "4K" or "128kbps". The second result is false when the
// label carries no number (e.g., "medium", "HD", "N/A").
func ParseQuality(label string) (Quality, bool) {
	input := strings.ToLower(strings.TrimSpace(label))
	if input == "" {
		return Quality{}, false
	}
	result := qualityLabel(input)
	if result.Err != nil {
		return Quality{}, false
	}
	return result.Output, true
}

func parseBitrateLabel(input string) gomme.Result[Quality, string] {
	return gomme.Map(
		gomme.Terminated(
			integer[string](),
			gomme.Preceded(gomme.Whitespace0[string](), gomme.Token[string]("kbps")),
		),
		func(n int) (Quality, error) {
			return Quality{Kind: KindBitrate, Value: n}, nil
		},
	)(input)
}

func parseHeightLabel(input string) gomme.Result[Quality, string] {
	return gomme.Map(
		gomme.Terminated(integer[string](), gomme.Char[string]('p')),
		func(n int) (Quality, error) {
			return Quality{Kind: KindHeight, Value: n}, nil
		},
	)(input)
}

func parseCinemaLabel(input string) gomme.Result[Quality, string] {
	return gomme.Map(
		gomme.Terminated(integer[string](), gomme.Char[string]('k')),
		func(n int) (Quality, error) {
			height, ok := cinemaHeights[n]
			if !ok {
				return Quality{}, errors.New("unknown cinema resolution")
			}
			return Quality{Kind: KindHeight, Value: height}, nil
		},
	)(input)
}

func parseBareNumber(input string) gomme.Result[Quality, string] {
	return gomme.Map(
		gomme.Terminated(integer[string](), eof[string]()),
		func(n int) (Quality, error) {
			return Quality{Kind: KindHeight, Value: n}, nil
		},
	)(input)
}

func eof[Input gomme.Bytes]() gomme.Parser[Input, Input] {
	return func(input Input) gomme.Result[Input, Input] {
		if len(input) == 0 {
			return gomme.Success(input, input)
		}
		return gomme.Failure[Input, Input](
			gomme.NewError(input, "end of input"),
			input,
		)
	}
}

func integer[Input gomme.Bytes]() gomme.Parser[Input, int] {
	return func(input Input) gomme.Result[int, Input] {
		parser := gomme.Recognize(gomme.Digit1[Input]())

		result := parser(input)
		if result.Err != nil {
			return gomme.Failure[Input, int](gomme.NewError(input, "integer"), input)
		}

		n, err := strconv.Atoi(string(result.Output))
		if err != nil {
			return gomme.Failure[Input, int](gomme.NewError(input, "integer"), input)
		}

		return gomme.Success(n, result.Remaining)
	}
}
