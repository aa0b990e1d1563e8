package emit

import (
	"fmt"
	"strings"

	"github.com/pborges/simpio/internal/pico"
	"github.com/pborges/simpio/internal/translate"
)

const cmakeBody = `
cmake_minimum_required(VERSION 3.12)
include($ENV{PICO_SDK_PATH}/external/pico_sdk_import.cmake)
project(${myprojectname} C CXX ASM)
pico_sdk_init()
add_executable(${PROJECT_NAME} ${PROJECT_NAME}.c)
pico_generate_pio_header(${PROJECT_NAME} ${CMAKE_CURRENT_LIST_DIR}/${PROJECT_NAME}.pio)
target_link_libraries(${PROJECT_NAME} PRIVATE pico_stdlib pico_multicore hardware_pio)
pico_add_extra_outputs(${PROJECT_NAME})
`

// BuildDescriptor renders CMakeLists.txt.
func BuildDescriptor(name string, p *translate.Project) string {
	var buf strings.Builder
	for _, prog := range p.Programs {
		fmt.Fprintf(&buf, "set(%s_program \"%s\")\n", prog.Name, prog.Name)
	}
	fmt.Fprintf(&buf, "set(myprojectname \"%s\")\n", name)
	buf.WriteString(cmakeBody)
	buf.WriteString(serialStanza(p.Serial))
	return buf.String()
}

const driverIncludes = `#include <stdio.h>
#include "pico/stdlib.h"
#include "pico/multicore.h"
#include "hardware/pio.h"
`

const driverHelpers = `
#define DATA_MAX 256

static void data_write(PIO pio, uint sm, const char *buf) {
    while (*buf != '\0') {
        pio_sm_put_blocking(pio, sm, (uint32_t) *buf++);
    }
}

static void data_read(PIO pio, uint sm, char *buf, int len) {
    int i;
    if (len > DATA_MAX - 1) len = DATA_MAX - 1;
    for (i = 0; i < len; i++) {
        buf[i] = (char) pio_sm_get_blocking(pio, sm);
    }
    buf[i] = '\0';
}

static void data_readln(PIO pio, uint sm, char *buf, int max) {
    int i = 0;
    char c;
    while (i < max - 1) {
        c = (char) pio_sm_get_blocking(pio, sm);
        if (c == '\n') break;
        buf[i++] = c;
    }
    buf[i] = '\0';
}
`

// DriverSource renders the C driver. Core 1 comes first so core 0 can
// reference its entry point.
func DriverSource(name string, p *translate.Project) (string, error) {
	var buf strings.Builder
	buf.WriteString(driverIncludes)
	fmt.Fprintf(&buf, "#include \"%s.pio.h\"\n", name)
	buf.WriteString(driverHelpers)
	for _, proc := range []pico.Processor{pico.Core1, pico.Core0} {
		d, ok := p.Driver(proc)
		if !ok {
			continue
		}
		stmts, err := d.Statements()
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&buf, "\n%s {\n", proc.Signature())
		writeStatements(&buf, stmts)
		buf.WriteString("}\n")
	}
	return buf.String(), nil
}
