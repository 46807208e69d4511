// Package disasmtool invokes external disassembler tools against a sample
// and parses their output into a predicted instruction-start address set,
// for comparison against ground truth via evaluate. The tools themselves
// (IDA, a Dockerized DeepDi, a Dockerized IdentifyX86 model) are external
// collaborators per spec; only the invocation and output-parsing contracts
// live here, the way the teacher's cmd/run68 shells out to nothing itself
// but still owns the full lifecycle of the process it does spawn.
package disasmtool

import (
	"bufio"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/tanglebyte/supersetds/elfpack"
	"github.com/tanglebyte/supersetds/graphbuild"
	"github.com/tanglebyte/supersetds/npz"
	"github.com/tanglebyte/supersetds/sample"
	"github.com/tanglebyte/supersetds/superset"
	"github.com/tanglebyte/supersetds/vocab"
	"github.com/tanglebyte/supersetds/xerrors"
	"github.com/tanglebyte/supersetds/xlog"
)

// Name identifies one configured tool variant. The runner is a tagged sum
// type over exactly these three — no open extension inside the core.
type Name uint8

const (
	Ida Name = iota
	DeepDi
	IdentifyX86
)

func (n Name) String() string {
	switch n {
	case Ida:
		return "ida"
	case DeepDi:
		return "deepdi"
	case IdentifyX86:
		return "identify-x86"
	default:
		return "unknown"
	}
}

// ParseName resolves a CLI-facing tool name to its Name constant.
func ParseName(s string) (Name, bool) {
	switch strings.ToLower(s) {
	case "ida":
		return Ida, true
	case "deepdi":
		return DeepDi, true
	case "identify-x86", "identifyx86":
		return IdentifyX86, true
	default:
		return 0, false
	}
}

// IdaConfig configures the IDA Pro batch-mode invocation.
type IdaConfig struct {
	IdaPath    string `yaml:"ida_path"`
	ShowOutput bool   `yaml:"show_output"`
}

// DeepDiConfig configures the containerized DeepDi invocation.
type DeepDiConfig struct {
	DrmKey    string `yaml:"drm_key"`
	ImageName string `yaml:"image_name"`
}

// IdentifyX86Config configures the containerized model-inference invocation.
type IdentifyX86Config struct {
	ModelPath     string `yaml:"model_path"`
	CodeVocabPath string `yaml:"code_vocab_path"`
	ImageName     string `yaml:"image_name"`
}

// Config holds every tool's configuration, as loaded from runners.yaml.
type Config struct {
	Ida         IdaConfig         `yaml:"ida"`
	DeepDi      DeepDiConfig      `yaml:"deepdi"`
	IdentifyX86 IdentifyX86Config `yaml:"identify_x86"`
}

// Run dispatches to the configured variant and returns the predicted
// instruction-start addresses. ctx governs the process-wait suspension
// point; canceling ctx kills the external process/container.
func Run(ctx context.Context, name Name, cfg *Config, s *sample.ExecutableSample) (map[uint32]struct{}, error) {
	switch name {
	case Ida:
		return runIda(ctx, &cfg.Ida, s)
	case DeepDi:
		return runDeepDi(ctx, &cfg.DeepDi, s)
	case IdentifyX86:
		return runIdentifyX86(ctx, &cfg.IdentifyX86, s)
	default:
		return nil, xerrors.Invariant("disasmtool: unknown tool name")
	}
}

// idaScript is a trimmed version of IDA SDK's analysis.idc: run the final
// analysis pass to completion, then dump a .lst listing next to the input.
const idaScript = `
#include <idc.idc>

static main()
{
  set_inf_attr(INF_AF, get_inf_attr(INF_AF) | AF_DODATA | AF_FINAL);
  auto_mark_range(0, BADADDR, AU_FINAL);
  auto_wait();

  auto file = get_idb_path()[0:-4] + ".lst";
  auto fhandle = fopen(file, "w");
  gen_file(OFILE_LST, fhandle, 0, BADADDR, 0);
  qexit(0);
}
`

// lstLineRE matches "segment:address BYTES content". Opcode bytes are
// uppercase hex only, so lowercase directives such as "db" or "dd" are left
// in content rather than being taken for bytes.
var lstLineRE = regexp.MustCompile(`^\w+:(?P<addr>[0-9A-Fa-f]+)(?: (?:[0-9A-F]{2}[ +]+)+(?P<content>.*))?$`)

func runIda(ctx context.Context, cfg *IdaConfig, s *sample.ExecutableSample) (map[uint32]struct{}, error) {
	log := xlog.L()
	log.Debug().Str("tool", "ida").Msg("running external disassembler")

	dir, err := os.MkdirTemp("", "datatool-ida-*")
	if err != nil {
		return nil, xerrors.IO(err, "creating ida temp directory")
	}
	defer os.RemoveAll(dir)

	elfPath := filepath.Join(dir, "sample.elf")
	scriptPath := filepath.Join(dir, "analysis.idc")

	if err := writeStrippedELF(elfPath, s); err != nil {
		return nil, err
	}
	if err := os.WriteFile(scriptPath, []byte(idaScript), 0o644); err != nil {
		return nil, xerrors.IO(err, "writing ida script")
	}

	cmd := exec.CommandContext(ctx, cfg.IdaPath, "-A", "-S"+scriptPath, elfPath)
	if cfg.ShowOutput {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}
	if err := cmd.Run(); err != nil {
		return nil, xerrors.Tool(err, "ida exited unsuccessfully")
	}

	lstPath := elfPath + ".lst"
	f, err := os.Open(lstPath)
	if err != nil {
		return nil, xerrors.IO(err, "reading ida output listing")
	}
	defer f.Close()

	return parseLst(f)
}

// parseLst extracts predicted instruction-start addresses from an IDA .lst
// listing, skipping lines whose content looks like a data directive.
func parseLst(r *os.File) (map[uint32]struct{}, error) {
	out := make(map[uint32]struct{})
	sc := bufio.NewScanner(r)
	var prevAddr uint32
	havePrev := false

	for sc.Scan() {
		m := lstLineRE.FindStringSubmatch(sc.Text())
		if m == nil {
			continue
		}
		addrHex := m[lstLineRE.SubexpIndex("addr")]
		content := m[lstLineRE.SubexpIndex("content")]

		addr64, err := strconv.ParseUint(addrHex, 16, 32)
		if err != nil {
			continue
		}
		addr := uint32(addr64)
		if havePrev && addr == prevAddr {
			continue
		}
		if content == "" {
			continue
		}
		prevAddr, havePrev = addr, true

		if looksLikeData(content) {
			continue
		}
		out[addr] = struct{}{}
	}
	if err := sc.Err(); err != nil {
		return nil, xerrors.Decode(err, "scanning ida listing")
	}
	return out, nil
}

func looksLikeData(content string) bool {
	fields := strings.Fields(content)
	for i, f := range fields {
		if i >= 2 {
			break
		}
		switch f {
		case "db", "dw", "dd", "dq", "align":
			return true
		}
	}
	return strings.HasPrefix(content, `text "UTF-16LE"`)
}

func runDeepDi(ctx context.Context, cfg *DeepDiConfig, s *sample.ExecutableSample) (map[uint32]struct{}, error) {
	log := xlog.L()
	log.Debug().Str("tool", "deepdi").Msg("running external disassembler")

	f, err := os.CreateTemp("", "datatool-deepdi-*.elf")
	if err != nil {
		return nil, xerrors.IO(err, "creating deepdi temp file")
	}
	defer os.Remove(f.Name())
	defer f.Close()

	if err := elfpack.Write(s.Memory, f); err != nil {
		return nil, xerrors.IO(err, "writing stripped elf for deepdi")
	}
	if err := f.Close(); err != nil {
		return nil, xerrors.IO(err, "closing deepdi elf file")
	}

	entrypoint := "python3 /home/DeepDi.py --key " + cfg.DrmKey + " --path /mnt/sample.elf"
	cmd := exec.CommandContext(ctx, "docker", "run", "--rm",
		"-v", f.Name()+":/mnt/sample.elf",
		cfg.ImageName, "/bin/bash", "-c", entrypoint)

	out, err := cmd.Output()
	if err != nil {
		return nil, xerrors.Tool(err, "deepdi container exited unsuccessfully")
	}

	result := make(map[uint32]struct{})
	sc := bufio.NewScanner(strings.NewReader(string(out)))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || !strings.HasPrefix(line, "0x") {
			continue
		}
		addr, err := strconv.ParseUint(line[2:], 16, 32)
		if err != nil {
			return nil, xerrors.Decode(err, "parsing deepdi address output")
		}
		result[uint32(addr)] = struct{}{}
	}
	return result, sc.Err()
}

func runIdentifyX86(ctx context.Context, cfg *IdentifyX86Config, s *sample.ExecutableSample) (map[uint32]struct{}, error) {
	log := xlog.L()
	log.Debug().Str("tool", "identify-x86").Msg("computing graph for model inference")

	ss, err := superset.Build(s.Memory, s.Classes)
	if err != nil {
		return nil, xerrors.Wrap(err, "building superset for identify-x86")
	}
	gs := graphbuild.Build(ss)

	vf, err := os.Open(cfg.CodeVocabPath)
	if err != nil {
		return nil, xerrors.IO(err, "opening code vocab for identify-x86")
	}
	v, err := vocab.Deserialize(vf)
	vf.Close()
	if err != nil {
		return nil, xerrors.Decode(err, "parsing code vocab for identify-x86")
	}

	graphFile, err := os.CreateTemp("", "datatool-identify-x86-*.graph")
	if err != nil {
		return nil, xerrors.IO(err, "creating identify-x86 temp graph file")
	}
	defer os.Remove(graphFile.Name())
	defer graphFile.Close()

	if err := npz.Emit(graphFile, gs, v); err != nil {
		return nil, xerrors.IO(err, "writing identify-x86 graph npz")
	}
	if err := graphFile.Close(); err != nil {
		return nil, xerrors.IO(err, "closing identify-x86 graph file")
	}

	log.Debug().Str("tool", "identify-x86").Msg("running model in docker")
	cmd := exec.CommandContext(ctx, "docker", "run", "--rm",
		"-v", cfg.ModelPath+":/model.pt",
		"-v", graphFile.Name()+":/sample.graph",
		cfg.ImageName, "/model.pt", "/sample.graph")

	out, err := cmd.Output()
	if err != nil {
		return nil, xerrors.Tool(err, "identify-x86 container exited unsuccessfully")
	}

	predicted := make(map[uint32]struct{})
	sc := bufio.NewScanner(strings.NewReader(string(out)))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		nodeIdx, err := strconv.ParseUint(line, 10, 32)
		if err != nil {
			return nil, xerrors.Decode(err, "parsing identify-x86 node index output")
		}
		if int(nodeIdx) >= len(ss.Entries) {
			return nil, xerrors.Invariant("identify-x86 returned an out-of-range node index")
		}
		predicted[ss.Entries[nodeIdx].Addr] = struct{}{}
	}
	return predicted, sc.Err()
}

func writeStrippedELF(path string, s *sample.ExecutableSample) error {
	f, err := os.Create(path)
	if err != nil {
		return xerrors.IO(err, "creating stripped elf")
	}
	defer f.Close()
	if err := elfpack.Write(s.Memory, f); err != nil {
		return xerrors.IO(err, "writing stripped elf")
	}
	return nil
}
