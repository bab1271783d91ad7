// Command rampctl drives a stepper controller over serial: it
// configures the axes from a JSON file and offers an interactive
// prompt for moves and state queries.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"rampgen/config"
	"rampgen/host"
	"rampgen/host/serial"
	"rampgen/motion"
)

var (
	device     = flag.String("device", "", "Serial device path (overrides config)")
	baud       = flag.Int("baud", 0, "Baud rate (ignored for USB CDC)")
	configPath = flag.String("config", "", "JSON configuration file")
)

func main() {
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cfg, err = config.Load(data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	if *device != "" {
		cfg.Device = *device
	}
	if *baud != 0 {
		cfg.Baud = *baud
	}

	// Register the command table so names resolve to wire IDs.
	motion.InitMotionCommands()

	fmt.Printf("Connecting to %s...\n", cfg.Device)
	portCfg := serial.DefaultConfig(cfg.Device)
	portCfg.Baud = cfg.Baud
	port, err := serial.Open(portCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer port.Close()

	link := host.NewLink(port)

	oids := configureMotors(link, cfg)
	fmt.Printf("Configured %d motor(s)\n", len(oids))

	fmt.Println("Enter commands (type 'help' for available commands, 'quit' to exit):")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]

		switch cmd {
		case "quit", "exit", "q":
			return

		case "help", "?":
			printHelp()

		case "move":
			if err := moveCommand(link, parts[1:], false); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}

		case "moveto":
			if err := moveCommand(link, parts[1:], true); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}

		case "ramp":
			if err := rampCommand(link, parts[1:]); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}

		case "query":
			if err := queryCommand(link, parts[1:]); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}

		default:
			fmt.Printf("Unknown command: %s (type 'help' for available commands)\n", cmd)
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}
}

// configureMotors sends config_stepper and set_ramp for every motor in
// the configuration. Object IDs are assigned by sorted motor name.
func configureMotors(link *host.Link, cfg *config.Config) map[string]int32 {
	names := make([]string, 0, len(cfg.Motors))
	for name := range cfg.Motors {
		names = append(names, name)
	}
	sort.Strings(names)

	oids := make(map[string]int32)
	for i, name := range names {
		m := cfg.Motors[name]
		oid := int32(i)

		err := link.Send("config_stepper", oid,
			int32(m.StepPin), int32(m.DirPin), boolArg(m.InvertStep), boolArg(m.InvertDir))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: config %s: %v\n", name, err)
			continue
		}
		err = link.Send("set_ramp", oid, int32(m.StartDelay), int32(m.CruiseDelay))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: ramp %s: %v\n", name, err)
			continue
		}
		oids[name] = oid
		fmt.Printf("  %s: oid=%d step=%d dir=%d start=%.0f cruise=%.0f\n",
			name, oid, m.StepPin, m.DirPin, m.StartDelay, m.CruiseDelay)
	}
	return oids
}

// moveCommand sends a relative or absolute move and polls until the
// device reports completion.
func moveCommand(link *host.Link, args []string, absolute bool) error {
	oid, value, err := oidAndValue(args)
	if err != nil {
		return err
	}

	name := "move"
	if absolute {
		name = "move_to"
	}
	if err := link.Send(name, oid, value); err != nil {
		return err
	}
	return waitDone(link, oid)
}

func rampCommand(link *host.Link, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: ramp <oid> <start_delay> <cruise_delay>")
	}
	oid, err := strconv.ParseInt(args[0], 10, 32)
	if err != nil {
		return err
	}
	start, err := strconv.ParseInt(args[1], 10, 32)
	if err != nil {
		return err
	}
	cruise, err := strconv.ParseInt(args[2], 10, 32)
	if err != nil {
		return err
	}
	return link.Send("set_ramp", int32(oid), int32(start), int32(cruise))
}

func queryCommand(link *host.Link, args []string) error {
	oid := int32(0)
	if len(args) > 0 {
		v, err := strconv.ParseInt(args[0], 10, 32)
		if err != nil {
			return err
		}
		oid = int32(v)
	}

	pos, taken, done, err := queryState(link, oid)
	if err != nil {
		return err
	}
	fmt.Printf("oid=%d pos=%d taken=%d done=%v\n", oid, pos, taken, done)
	return nil
}

// waitDone polls query_stepper until the move completes.
func waitDone(link *host.Link, oid int32) error {
	for {
		pos, _, done, err := queryState(link, oid)
		if err != nil {
			return err
		}
		if done {
			fmt.Printf("done, pos=%d\n", pos)
			return nil
		}
		time.Sleep(50 * time.Millisecond)
	}
}

// queryState returns (position, steps taken, done) for one motor.
func queryState(link *host.Link, oid int32) (int32, int32, bool, error) {
	args, err := link.Query("query_stepper", oid)
	if err != nil {
		return 0, 0, false, err
	}
	// Response: id, oid, pos, taken, done.
	if len(args) != 5 {
		return 0, 0, false, fmt.Errorf("malformed stepper_state response: %v", args)
	}
	return args[2], args[3], args[4] != 0, nil
}

func oidAndValue(args []string) (int32, int32, error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("usage: <command> <oid> <steps>")
	}
	oid, err := strconv.ParseInt(args[0], 10, 32)
	if err != nil {
		return 0, 0, err
	}
	value, err := strconv.ParseInt(args[1], 10, 32)
	if err != nil {
		return 0, 0, err
	}
	return int32(oid), int32(value), nil
}

func boolArg(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

func printHelp() {
	fmt.Println("\nAvailable commands:")
	fmt.Println("  move <oid> <delta>              - Relative move, waits for completion")
	fmt.Println("  moveto <oid> <pos>              - Absolute move, waits for completion")
	fmt.Println("  ramp <oid> <start> <cruise>     - Set ramp delays in timer ticks")
	fmt.Println("  query [oid]                     - Print motor state")
	fmt.Println("  quit/exit/q                     - Exit the program")
	fmt.Println()
}
