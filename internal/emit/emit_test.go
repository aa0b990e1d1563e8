package emit

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pborges/simpio/examples"
	"github.com/pborges/simpio/internal/testutil"
	"github.com/pborges/simpio/internal/translate"
)

func render(t *testing.T, name, src string) Artifacts {
	t.Helper()
	p, err := translate.Translate([]byte(src), translate.Options{})
	require.NoError(t, err)
	a, err := Render(name, p)
	require.NoError(t, err)
	return a
}

func renderExample(t *testing.T, name string) Artifacts {
	t.Helper()
	src, err := examples.FS.ReadFile(name + ".simpio")
	require.NoError(t, err)
	return render(t, name, string(src))
}

func TestBlinkArtifacts(t *testing.T) {
	a := renderExample(t, "blink")

	assert.True(t, strings.HasPrefix(a.BuildDescriptor,
		"set(blink_program \"blink\")\nset(myprojectname \"blink\")\n\ncmake_minimum_required(VERSION 3.12)\n"))
	assert.True(t, strings.HasSuffix(a.BuildDescriptor,
		"pico_enable_stdio_usb(${PROJECT_NAME} 0)\npico_enable_stdio_uart(${PROJECT_NAME} 1)\n"))

	blocks, err := testutil.ParseInitBlocks(a.ProgramText())
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, "blink_init", blocks[0].Func)
	want := []string{
		"PIO pio = pio0;",
		"uint offset = pio_add_program(pio, &blink_program);",
		"pio_sm_config sm_config = blink_program_get_default_config(offset);",
		"uint sm = 0;",
		"pio_sm_claim(pio, sm);",
		"sm_config_set_set_pins(&sm_config,25,1);",
		"for (uint itmp=25; itmp < 25 + 1; itmp++) pio_gpio_init(pio, itmp);",
		"pio_sm_set_consecutive_pindirs(pio, sm, 25, 1, true);",
		"pio_sm_init(pio, sm, offset, &sm_config);",
		"pio_sm_set_enabled(pio, sm, true);",
	}
	if diff := cmp.Diff(want, blocks[0].Lines); diff != "" {
		t.Fatalf("blink_init mismatch (-want +got):\n%s", diff)
	}

	main, ok := testutil.FunctionBody(a.DriverSource, "int main()")
	require.True(t, ok)
	_, ok = testutil.FunctionBody(a.DriverSource, "void core1_entry()")
	assert.False(t, ok)
	for _, l := range main {
		assert.NotContains(t, l, "multicore_launch_core1")
	}
	assert.Equal(t, []string{
		"char data[DATA_MAX];",
		"PIO pio = pio0;",
		"uint sm = 0;",
		"stdio_init_all();",
		"sleep_ms(2000);",
		`printf("simpio: starting\n");`,
		"blink_init();",
		"pio_sm_put_blocking(pio, sm, 1);",
		"while (true) {",
		`printf("simpio: idle\n");`,
		"sleep_ms(1000);",
		"}",
	}, main)
	assert.Contains(t, a.DriverSource, "#include \"blink.pio.h\"\n")
}

func TestDualCoreArtifacts(t *testing.T) {
	a := renderExample(t, "dual_core")

	assert.True(t, strings.HasPrefix(a.BuildDescriptor,
		"set(tx_program \"tx\")\nset(rx_program \"rx\")\nset(myprojectname \"dual_core\")\n"))

	blocks, err := testutil.ParseInitBlocks(a.ProgramText())
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, "tx_init", blocks[0].Func)
	assert.Equal(t, "rx_init", blocks[1].Func)
	assert.Contains(t, blocks[0].Lines, "sm_config_set_out_shift(&sm_config,1,1,8);")
	assert.Contains(t, blocks[0].Lines, "sm_config_set_clkdiv_int_frac (&sm_config, 125, 0);")
	assert.Contains(t, blocks[1].Lines, "PIO pio = pio1;")
	assert.Contains(t, blocks[1].Lines, "sm_config_set_in_shift(&sm_config,0,1,8);")
	assert.Contains(t, blocks[1].Lines, "sm_config_set_fifo_join(&sm_config,PIO_FIFO_JOIN_RX);")

	launch := "multicore_launch_core1(core1_entry);"
	main, ok := testutil.FunctionBody(a.DriverSource, "int main()")
	require.True(t, ok)
	assert.Equal(t, 1, strings.Count(a.DriverSource, launch))
	assert.Less(t, testutil.IndexOf(main, launch), testutil.IndexOf(main, "tx_init();"))
	assert.Contains(t, main, "gpio_put(25, 1);")

	core1, ok := testutil.FunctionBody(a.DriverSource, "void core1_entry()")
	require.True(t, ok)
	assert.Equal(t, []string{
		"char data[DATA_MAX];",
		"PIO pio = pio1;",
		"uint sm = 1;",
		"rx_init();",
		"uint32_t value = 0;",
		"value = pio_sm_get_blocking(pio, sm);",
		`printf("%d\n", value);`,
	}, core1)

	// core1_entry is defined before main references it.
	assert.Less(t, strings.Index(a.DriverSource, "void core1_entry() {"), strings.Index(a.DriverSource, "int main() {"))
}

func TestDataUSBArtifacts(t *testing.T) {
	a := renderExample(t, "data_usb")

	assert.True(t, strings.HasSuffix(a.BuildDescriptor,
		"pico_enable_stdio_usb(${PROJECT_NAME} 1)\npico_enable_stdio_uart(${PROJECT_NAME} 0)\n"))

	main, ok := testutil.FunctionBody(a.DriverSource, "int main()")
	require.True(t, ok)
	set := testutil.IndexOf(main, `snprintf(data, DATA_MAX, "%s", "hello  from   simpio");`)
	write := testutil.IndexOf(main, "data_write(pio, sm, data);")
	read := testutil.IndexOf(main, "data_read(pio, sm, data, 20);")
	require.NotEqual(t, -1, set)
	assert.Less(t, set, write)
	assert.Less(t, write, read)
	assert.Contains(t, main, "data_readln(pio, sm, data, DATA_MAX);")
	assert.Contains(t, main, `data[0] = '\0';`)
	assert.Contains(t, main, "uint sm = 2;")
	assert.Contains(t, a.DriverSource, "#define DATA_MAX 256\n")
}

func TestPassThroughRoundTrip(t *testing.T) {
	src := "; comment\n.program p\n.config pio 0\nloop:\n    jmp loop\n\n.wrap\n"
	a := render(t, "p", src)
	assert.Equal(t, "; comment\n.program p\nloop:\n    jmp loop\n\n.wrap\n", a.PassThrough)
	assert.True(t, strings.HasPrefix(a.ProgramText(), a.PassThrough+"\n% c-sdk {\n"))
}

func TestEmptyInput(t *testing.T) {
	a := render(t, "empty", "")
	assert.Empty(t, a.Initializers)
	assert.Equal(t, "", a.PassThrough)
	assert.Equal(t, "\n", a.ProgramText())
	assert.NotContains(t, a.DriverSource, "int main()")
	assert.Contains(t, a.BuildDescriptor, "set(myprojectname \"empty\")\n")
}

func TestRenderRequiresName(t *testing.T) {
	_, err := Render("", &translate.Project{})
	assert.Error(t, err)
}

func TestEcho(t *testing.T) {
	a := renderExample(t, "dual_core")
	var buf bytes.Buffer
	require.NoError(t, Echo(&buf, a))
	out := buf.String()

	titles := []string{"\nCMakeLists.txt:\n", "\nOUTPUT PROGRAM:\n", "\nINIT FUNCTION:\n", "\nUSER PROGRAM:\n"}
	last := -1
	for _, title := range titles {
		i := strings.Index(out, title)
		require.NotEqual(t, -1, i, "missing %q", title)
		assert.Greater(t, i, last, "%q out of order", title)
		last = i
	}
	assert.Equal(t, 2, strings.Count(out, "\nINIT FUNCTION:\n"))
	assert.True(t, strings.HasSuffix(out, a.DriverSource+"\n"))
}

func TestWrite(t *testing.T) {
	a := renderExample(t, "blink")
	dir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, Write(dir, a))

	for _, f := range a.Files() {
		got, err := os.ReadFile(filepath.Join(dir, f.Name))
		require.NoError(t, err)
		assert.Equal(t, f.Content, string(got), f.Name)
	}
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"CMakeLists.txt", "blink.pio", "blink.c"}, names)

	// Rewriting replaces the files in place.
	require.NoError(t, Write(dir, a))
}
