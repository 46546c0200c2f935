package homology

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os/exec"

	"github.com/ANUcybernetics/trajectory-tracer/pkg/domain"
	xe "github.com/ANUcybernetics/trajectory-tracer/pkg/errors"
)

// CommandComputer runs an external executable (typically a thin ripser
// wrapper) as the homology backend.
//
// Protocol: the request is written to stdin as JSON
//
//	{"points": [[...], ...], "max_dimension": N}
//
// and the response is read from stdout as
//
//	{"dgms": [[[birth, death], ...], ...]}
//
// where dgms[i] lists the generators of dimension i, and a null death
// stands for an infinite one.
type CommandComputer struct {
	// Path of the executable.
	Path string

	// Args passed before the JSON request.
	Args []string
}

var _ Computer = CommandComputer{}

type commandRequest struct {
	Points       [][]float32 `json:"points"`
	MaxDimension int         `json:"max_dimension"`
}

type commandResponse struct {
	Dgms [][][2]*float64 `json:"dgms"`
}

func (c CommandComputer) Compute(
	ctx context.Context, points [][]float32, maxDimension int,
) (map[int][]domain.BirthDeath, error) {
	if len(points) == 0 {
		return nil, &Error{Points: 0, Cause: xe.New("empty point cloud")}
	}

	request, err := json.Marshal(commandRequest{
		Points:       points,
		MaxDimension: maxDimension,
	})
	if err != nil {
		return nil, &Error{Points: len(points), Cause: xe.Wrap(err)}
	}

	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Stdin = bytes.NewReader(request)
	stderr := new(bytes.Buffer)
	cmd.Stderr = stderr

	stdout, err := cmd.Output()
	if err != nil {
		return nil, &Error{
			Points: len(points),
			Cause:  xe.WrapWithNote(stderr.String(), err),
		}
	}

	response := commandResponse{}
	if err := json.Unmarshal(stdout, &response); err != nil {
		return nil, &Error{Points: len(points), Cause: xe.Wrap(err)}
	}

	dgms := map[int][]domain.BirthDeath{}
	for dim, pairs := range response.Dgms {
		generators := make([]domain.BirthDeath, 0, len(pairs))
		for _, pair := range pairs {
			if pair[0] == nil {
				return nil, &Error{
					Points: len(points),
					Cause:  xe.New("backend returned a generator without birth"),
				}
			}
			death := math.Inf(1)
			if pair[1] != nil {
				death = *pair[1]
			}
			generators = append(generators, domain.BirthDeath{
				Birth: *pair[0],
				Death: death,
			})
		}
		dgms[dim] = generators
	}
	return dgms, nil
}
