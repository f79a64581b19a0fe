package fio

import (
	"fmt"
	"runtime"
	"strings"
)

// Pattern selects the read access pattern of a benchmark job.
type Pattern int

const (
	SeqRead Pattern = iota
	RandRead
)

func (p Pattern) String() string {
	switch p {
	case SeqRead:
		return "seqread"
	case RandRead:
		return "randread"
	default:
		return "unknown"
	}
}

// rw returns the fio rw= value for the pattern.
func (p Pattern) rw() string {
	if p == RandRead {
		return "randread"
	}
	return "read"
}

// ParsePattern parses a benchmark type name as accepted on the command line.
func ParsePattern(s string) (Pattern, error) {
	switch s {
	case "seqread":
		return SeqRead, nil
	case "randread":
		return RandRead, nil
	default:
		return 0, fmt.Errorf("unknown benchmark type %q (want seqread or randread)", s)
	}
}

const (
	DefaultLoops    = 3
	DefaultSize     = "10G"
	DefaultFilename = "btrfs-raid1"
)

// Job describes one fio read benchmark. It is immutable once handed to a
// Runner; callers adjust fields before the run, never during.
type Job struct {
	Pattern  Pattern
	Jobs     int    // numjobs; >1 means concurrent workers on the same file
	Loops    int    // how many times each worker reads the file
	Size     string // fio size spec, e.g. "10G"
	Filename string // test file, relative to the current directory
}

// DefaultJob builds the predefined job for a pattern. Multithread jobs run
// one worker per logical CPU, matching what the filesystem would see from a
// parallel read workload.
func DefaultJob(pattern Pattern, multithread bool) Job {
	jobs := 1
	if multithread {
		jobs = runtime.NumCPU()
	}
	return Job{
		Pattern:  pattern,
		Jobs:     jobs,
		Loops:    DefaultLoops,
		Size:     DefaultSize,
		Filename: DefaultFilename,
	}
}

// Render produces the fio job file contents. Buffered I/O (direct=0) is
// deliberate: the read policy under tune services the page-cache miss path.
func (j Job) Render() string {
	var sb strings.Builder

	sb.WriteString("[global]\n")
	sb.WriteString("name=btrfs-raid1\n")
	sb.WriteString(fmt.Sprintf("filename=%s\n", j.Filename))
	sb.WriteString(fmt.Sprintf("rw=%s\n", j.Pattern.rw()))
	sb.WriteString(fmt.Sprintf("loops=%d\n", j.Loops))
	sb.WriteString("bs=64k\n")
	sb.WriteString("direct=0\n")
	sb.WriteString(fmt.Sprintf("numjobs=%d\n", j.Jobs))
	sb.WriteString("time_based=0\n")
	sb.WriteString("\n[file1]\n")
	sb.WriteString(fmt.Sprintf("size=%s\n", j.Size))
	sb.WriteString("ioengine=libaio\n")

	return sb.String()
}
