package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/course"
	"github.com/trezcool/academia/core/schedule"
	"github.com/trezcool/academia/core/section"
	"github.com/trezcool/academia/core/user"
)

var (
	isTerminalFunc = term.IsTerminal // mockable

	errHelp    = errors.New("help provided")
	errAborted = errors.New("aborted")
)

type commandLine struct {
	conf     *core.Config
	db       *sqlx.DB
	logger   core.Logger
	validate *validator.Validate
	usrSvc   user.ServiceInterface
	crsSvc   course.ServiceInterface
	secSvc   section.ServiceInterface
	schedSvc schedule.ServiceInterface
	in       io.Reader
	out      io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose migration command (up, down, status, ...)")
	fmt.Fprintln(cli.out, "  adduser -username USERNAME -email EMAIL -name NAME [-admin] [-instructor] - create or update a user")
	fmt.Fprintln(cli.out, "  seed -file FILE - load users, courses and sections from a YAML fixtures file")
	fmt.Fprintln(cli.out, "  archive - archive the meetings dated before today")
	fmt.Fprintln(cli.out, "  deletemeetings -section ID [-yes] - delete every meeting of a section")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserCmd.SetOutput(cli.out)
	addUserUname := addUserCmd.String("username", "", "The user's username.")
	addUserEmail := addUserCmd.String("email", "", "The user's email.")
	addUserName := addUserCmd.String("name", "", "The user's full name. Defaults to the username.")
	addUserAdmin := addUserCmd.Bool("admin", false, "Grant every admin role.")
	addUserInstructor := addUserCmd.Bool("instructor", false, "Grant the instructor role.")

	seedCmd := flag.NewFlagSet("seed", flag.ContinueOnError)
	seedCmd.SetOutput(cli.out)
	seedFile := seedCmd.String("file", "", "Path to the YAML fixtures file.")

	deleteMeetingsCmd := flag.NewFlagSet("deletemeetings", flag.ContinueOnError)
	deleteMeetingsCmd.SetOutput(cli.out)
	deleteMeetingsSection := deleteMeetingsCmd.String("section", "", "The section ID.")
	deleteMeetingsYes := deleteMeetingsCmd.Bool("yes", false, "Do not ask for confirmation.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserUname == "" || *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		usr, err := cli.addUser(*addUserUname, *addUserEmail, *addUserName, *addUserAdmin, *addUserInstructor)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "user %s (%s) saved\n", usr.Username, usr.ID)
		return nil

	case "seed":
		if err := seedCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *seedFile == "" {
			seedCmd.Usage()
			return errHelp
		}
		f, err := os.Open(*seedFile)
		if err != nil {
			return err
		}
		defer f.Close()
		return cli.seed(f)

	case "archive":
		return cli.archive()

	case "deletemeetings":
		if err := deleteMeetingsCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *deleteMeetingsSection == "" {
			deleteMeetingsCmd.Usage()
			return errHelp
		}
		return cli.deleteMeetings(*deleteMeetingsSection, *deleteMeetingsYes)

	default:
		cli.printUsage()
		return errHelp
	}
}
