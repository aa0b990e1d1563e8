// Package emit renders a translated project into the three simpio
// artifacts: the CMake build descriptor, the PIO program text and the driver
// C source. The boilerplate text here is consumed by pico-sdk tooling and
// must not drift.
package emit

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pborges/simpio/internal/pico"
	"github.com/pborges/simpio/internal/translate"
)

const (
	BuildDescriptorName = "CMakeLists.txt"
	indent              = "    "
)

type File struct {
	Name    string
	Content string
}

// Artifacts holds every rendered document of one project.
type Artifacts struct {
	Project         string
	BuildDescriptor string
	// PassThrough is the program text before the initializers.
	PassThrough  string
	Initializers []string
	DriverSource string
}

// ProgramText is the full content of the .pio file.
func (a Artifacts) ProgramText() string {
	return a.PassThrough + "\n" + strings.Join(a.Initializers, "")
}

// Files lists the artifacts in write order.
func (a Artifacts) Files() []File {
	return []File{
		{Name: BuildDescriptorName, Content: a.BuildDescriptor},
		{Name: a.Project + ".pio", Content: a.ProgramText()},
		{Name: a.Project + ".c", Content: a.DriverSource},
	}
}

// Render builds all artifacts in memory. name is the project name used for
// the generated file names.
func Render(name string, p *translate.Project) (Artifacts, error) {
	if name == "" {
		return Artifacts{}, fmt.Errorf("empty project name")
	}
	a := Artifacts{
		Project:         name,
		BuildDescriptor: BuildDescriptor(name, p),
		PassThrough:     passThrough(p.Text),
	}
	for _, prog := range p.Programs {
		a.Initializers = append(a.Initializers, Initializer(prog))
	}
	src, err := DriverSource(name, p)
	if err != nil {
		return Artifacts{}, err
	}
	a.DriverSource = src
	return a, nil
}

func passThrough(lines []string) string {
	var buf strings.Builder
	for _, l := range lines {
		buf.WriteString(l)
		buf.WriteByte('\n')
	}
	return buf.String()
}

// Initializer renders one program's c-sdk block.
func Initializer(prog *translate.ProgramContext) string {
	var buf strings.Builder
	buf.WriteString("% c-sdk {\n")
	fmt.Fprintf(&buf, "static inline void %s() {\n", prog.InitFunc())
	writeStatements(&buf, prog.Init)
	buf.WriteString("}\n%}\n")
	return buf.String()
}

func writeStatements(buf *strings.Builder, stmts []string) {
	for _, s := range stmts {
		if s == "" {
			continue
		}
		buf.WriteString(indent)
		buf.WriteString(s)
		buf.WriteByte('\n')
	}
}

type section struct {
	title string
	body  string
}

// Echo prints the artifacts in the fixed console order: descriptor,
// program text, one initializer per program, driver source.
func Echo(w io.Writer, a Artifacts) error {
	sections := []section{
		{BuildDescriptorName + ":", a.BuildDescriptor},
		{"OUTPUT PROGRAM:", a.PassThrough},
	}
	for _, block := range a.Initializers {
		sections = append(sections, section{"INIT FUNCTION:", block})
	}
	sections = append(sections, section{"USER PROGRAM:", a.DriverSource})

	for _, s := range sections {
		if _, err := fmt.Fprintf(w, "\n%s\n%s\n", s.title, s.body); err != nil {
			return err
		}
	}
	return nil
}

// Write stores every artifact in dir. Each file goes through a temporary
// file and a rename, so a reader never sees a half-written artifact.
func Write(dir string, a Artifacts) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	for _, f := range a.Files() {
		if err := writeFile(filepath.Join(dir, f.Name), f.Content); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path, content string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func serialStanza(s pico.Serial) string {
	if s == pico.SerialUSB {
		return "pico_enable_stdio_usb(${PROJECT_NAME} 1)\npico_enable_stdio_uart(${PROJECT_NAME} 0)\n"
	}
	return "pico_enable_stdio_usb(${PROJECT_NAME} 0)\npico_enable_stdio_uart(${PROJECT_NAME} 1)\n"
}
