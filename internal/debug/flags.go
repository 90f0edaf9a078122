// Copyright 2016 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package debug

import (
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"gopkg.in/natefinch/lumberjack.v2"
	"gopkg.in/urfave/cli.v1"
)

var (
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=detail",
		Value: 3,
	}
	vmoduleFlag = cli.StringFlag{
		Name:  "vmodule",
		Usage: "Per-module verbosity: comma-separated list of <pattern>=<level> (e.g. core/offsig=5,cmd/*=4)",
		Value: "",
	}
	logjsonFlag = cli.BoolFlag{
		Name:  "log.json",
		Usage: "Format logs with JSON",
	}
	backtraceAtFlag = cli.StringFlag{
		Name:  "log.backtrace",
		Usage: "Request a stack trace at a specific logging statement (e.g. \"accessors.go:71\")",
		Value: "",
	}
	debugFlag = cli.BoolFlag{
		Name:  "log.debug",
		Usage: "Prepends log messages with call-site location (file and line number)",
	}
	logFilenameFlag = cli.StringFlag{
		Name:  "log.filename",
		Usage: "The target file for writing logs, backup log files will be retained in the same directory.",
	}
	logFileMaxSizeFlag = cli.IntFlag{
		Name:  "log.maxsize",
		Usage: "The maximum size in megabytes of the log file before it gets rotated. It is used only when log.filename is provided.",
		Value: 100,
	}
	logMaxAgeFlag = cli.IntFlag{
		Name:  "log.maxage",
		Usage: "The maximum number of days to retain old log files. It is used only when log.filename is provided.",
		Value: 30,
	}
	logCompressFlag = cli.BoolFlag{
		Name:  "log.compress",
		Usage: "Compress rotated log files using gzip. It is used only when log.filename is provided.",
	}
)

// Flags holds all command-line flags required for logging.
var Flags = []cli.Flag{
	verbosityFlag,
	vmoduleFlag,
	logjsonFlag,
	backtraceAtFlag,
	debugFlag,
	logFilenameFlag,
	logFileMaxSizeFlag,
	logMaxAgeFlag,
	logCompressFlag,
}

var glogger *log.GlogHandler

func init() {
	glogger = log.NewGlogHandler(log.StreamHandler(os.Stderr, log.TerminalFormat(false)))
	glogger.Verbosity(log.LvlInfo)
	log.Root().SetHandler(glogger)
}

// Setup initializes logging based on the CLI flags. It should be called as
// early as possible in the program.
func Setup(ctx *cli.Context) error {
	var format log.Format
	output := io.Writer(os.Stderr)
	if ctx.GlobalBool(logjsonFlag.Name) {
		format = log.JSONFormat()
	} else {
		usecolor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
		if usecolor {
			output = colorable.NewColorableStderr()
		}
		format = log.TerminalFormat(usecolor)
	}
	if ctx.GlobalIsSet(logFilenameFlag.Name) {
		logFile, err := rotatingFile(ctx)
		if err != nil {
			return err
		}
		output = io.MultiWriter(output, logFile)
	}
	glogger.SetHandler(log.StreamHandler(output, format))

	glogger.Verbosity(log.Lvl(ctx.GlobalInt(verbosityFlag.Name)))
	if err := glogger.Vmodule(ctx.GlobalString(vmoduleFlag.Name)); err != nil {
		return fmt.Errorf("wrong vmodule set: %v", err)
	}
	log.PrintOrigins(ctx.GlobalBool(debugFlag.Name))
	if backtrace := ctx.GlobalString(backtraceAtFlag.Name); backtrace != "" {
		if err := glogger.BacktraceAt(backtrace); err != nil {
			return fmt.Errorf("wrong log.backtrace set: %v", err)
		}
	}
	log.Root().SetHandler(glogger)
	return nil
}

func rotatingFile(ctx *cli.Context) (io.Writer, error) {
	logFilename := ctx.GlobalString(logFilenameFlag.Name)
	f, err := os.OpenFile(logFilename, os.O_CREATE|os.O_RDWR, os.FileMode(0600))
	if err != nil {
		return nil, fmt.Errorf("wrong log.filename set: %v", err)
	}
	f.Close()

	maxSize := ctx.GlobalInt(logFileMaxSizeFlag.Name)
	if maxSize < 1 {
		return nil, fmt.Errorf("wrong log.maxsize set: %d", maxSize)
	}
	maxAge := ctx.GlobalInt(logMaxAgeFlag.Name)
	if maxAge < 1 {
		return nil, fmt.Errorf("wrong log.maxage set: %d", maxAge)
	}
	return &lumberjack.Logger{
		Filename: logFilename,
		MaxSize:  maxSize, // megabytes
		MaxAge:   maxAge,  // days
		Compress: ctx.GlobalBool(logCompressFlag.Name),
	}, nil
}
