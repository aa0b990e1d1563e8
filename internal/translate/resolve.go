package translate

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/pborges/simpio/internal/pico"
)

const idleLoop = "while (true) {\n" +
	"        printf(\"simpio: idle\\n\");\n" +
	"        sleep_ms(1000);\n" +
	"    }"

// Resolve finishes the project once all input is consumed: it fills the
// core 0 launch site, appends the core 0 idle loop and closes every
// program initializer. Calling it again returns the same project.
func (a *Accumulator) Resolve() (*Project, error) {
	if a.resolved {
		return &a.project, nil
	}

	launch, err := launchStatement(a.project.Drivers)
	if err != nil {
		return nil, err
	}
	if primary, ok := a.project.Driver(pico.Core0); ok {
		for i, s := range primary.Body {
			if _, ok := s.(LaunchSite); ok {
				primary.Body[i] = Text(launch)
			}
		}
		primary.append(idleLoop)
	}
	for _, prog := range a.project.Programs {
		prog.close()
	}
	a.resolved = true
	a.log.Debug("project resolved",
		zap.Int("programs", len(a.project.Programs)),
		zap.Int("user_processors", len(a.project.Drivers)),
		zap.Bool("launches_core1", launch != ""))
	return &a.project, nil
}

// launchStatement decides what the core 0 launch site becomes from the set
// of declared drivers.
func launchStatement(drivers []*DriverContext) (string, error) {
	switch len(drivers) {
	case 0:
		return "", nil
	case 1:
		if drivers[0].Processor != pico.Core0 {
			return "", ErrNoPrimary
		}
		return "", nil
	case 2:
		// Duplicates are rejected on declaration, so two drivers are
		// exactly core 0 and core 1.
		return fmt.Sprintf("multicore_launch_core1(%s);", pico.Core1.EntryPoint()), nil
	default:
		return "", fmt.Errorf("%w: %d declared, at most %d supported", ErrTooManyProcessors, len(drivers), pico.NumProcessors)
	}
}
