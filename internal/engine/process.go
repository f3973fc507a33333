package engine

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"photomesh/internal/apperr"
)

// DefaultBinary is the renderer executable looked up on PATH.
const DefaultBinary = "photogrammetry-render"

// Process drives an external renderer executable. The executable is invoked
// as `<binary> --detail <level> <input-dir> <output-file>` and reports on
// stdout, one event per line:
//
//	progress <fraction>
//	done <model-path>
//	error <message>
type Process struct {
	Binary string
	logger *zap.Logger
}

func NewProcess(binary string, logger *zap.Logger) *Process {
	if binary == "" {
		binary = DefaultBinary
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Process{
		Binary: binary,
		logger: logger.With(zap.String("component", "engine")),
	}
}

func (p *Process) Supported() bool {
	_, err := exec.LookPath(p.Binary)
	return err == nil
}

// Args returns the command line passed to the renderer for req.
func (p *Process) Args(req Request) []string {
	return []string{"--detail", req.Detail.String(), req.InputDir, req.OutputFile}
}

func (p *Process) Render(ctx context.Context, req Request, onProgress ProgressFunc) (<-chan Outcome, error) {
	path, err := exec.LookPath(p.Binary)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrEngineUnsupported, err)
	}

	cmd := exec.CommandContext(ctx, path, p.Args(req)...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrRenderFailed, err)
	}
	var stderrBuf bytes.Buffer
	cmd.Stderr = &stderrBuf

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: start %s: %v", apperr.ErrRenderFailed, p.Binary, err)
	}
	p.logger.Debug("renderer started", zap.String("binary", path), zap.Strings("args", p.Args(req)))

	done := make(chan Outcome, 1)
	go func() {
		events := p.consume(stdout, onProgress)
		waitErr := cmd.Wait()
		done <- resolve(req, events, waitErr, stderrBuf.String())
	}()
	return done, nil
}

type streamResult struct {
	modelPath string
	failure   string
}

// consume reads protocol events until EOF. Lines have no length limit, and
// stdout is always drained so the renderer never blocks on a full pipe.
func (p *Process) consume(r io.Reader, onProgress ProgressFunc) streamResult {
	var res streamResult
	br := bufio.NewReader(r)
	for {
		raw, err := br.ReadString('\n')
		if raw != "" {
			p.handleLine(strings.TrimSpace(raw), onProgress, &res)
		}
		if err == nil {
			continue
		}
		if err != io.EOF {
			p.logger.Debug("renderer output", zap.Error(err))
			_, _ = io.Copy(io.Discard, r)
		}
		return res
	}
}

func (p *Process) handleLine(line string, onProgress ProgressFunc, res *streamResult) {
	if line == "" {
		return
	}
	verb, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	switch verb {
	case "progress":
		fraction, err := strconv.ParseFloat(rest, 64)
		if err != nil {
			p.logger.Debug("ignoring malformed progress", zap.String("line", line))
			return
		}
		if onProgress != nil {
			onProgress(fraction)
		}
	case "done":
		res.modelPath = rest
	case "error":
		res.failure = rest
	default:
		if len(line) > 512 {
			line = line[:512] + "..."
		}
		p.logger.Debug(line)
	}
}

func resolve(req Request, res streamResult, waitErr error, stderr string) Outcome {
	if res.failure != "" {
		return Outcome{Err: fmt.Errorf("%w: %s", apperr.ErrRenderFailed, res.failure)}
	}
	if waitErr != nil {
		if msg := lastLine(stderr); msg != "" {
			return Outcome{Err: fmt.Errorf("%w: %s", apperr.ErrRenderFailed, msg)}
		}
		return Outcome{Err: fmt.Errorf("%w: %v", apperr.ErrRenderFailed, waitErr)}
	}
	if res.modelPath != "" {
		return Outcome{ModelPath: res.modelPath}
	}
	return Outcome{ModelPath: req.OutputFile}
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
