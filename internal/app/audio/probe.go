// Package audio inspects captured audio files and imports them as records.
package audio

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// FFProbeBinary is the ffprobe executable used by Probe.
var FFProbeBinary = "ffprobe"

// Info is what ffprobe reports about an audio file.
type Info struct {
	Duration   time.Duration
	Codec      string
	SampleRate int
}

type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		SampleRate int    `json:"sample_rate,string"`
	} `json:"streams"`
}

// Available reports whether ffprobe is on PATH.
func Available() bool {
	_, err := exec.LookPath(FFProbeBinary)
	return err == nil
}

// Probe runs ffprobe on path.
func Probe(ctx context.Context, path string) (Info, error) {
	cmd := exec.CommandContext(ctx, FFProbeBinary,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path)
	output, err := cmd.Output()
	if err != nil {
		return Info{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return parseProbeOutput(output)
}

func parseProbeOutput(data []byte) (Info, error) {
	var out ffprobeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return Info{}, fmt.Errorf("parse ffprobe output: %w", err)
	}

	var info Info
	for _, stream := range out.Streams {
		if stream.CodecType == "audio" {
			info.Codec = stream.CodecName
			info.SampleRate = stream.SampleRate
			break
		}
	}
	if info.Codec == "" {
		return Info{}, fmt.Errorf("no audio stream")
	}

	if d := strings.TrimSpace(out.Format.Duration); d != "" {
		seconds, err := strconv.ParseFloat(d, 64)
		if err != nil {
			return Info{}, fmt.Errorf("parse duration %q: %w", d, err)
		}
		info.Duration = time.Duration(math.Round(seconds*1000)) * time.Millisecond
	}
	return info, nil
}
