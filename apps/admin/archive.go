package main

import (
	"context"
	"fmt"

	jobsvc "github.com/trezcool/academia/services/jobs"
)

func (cli *commandLine) archive() error {
	n, err := jobsvc.ArchivePast(context.Background(), cli.schedSvc, cli.logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%d meeting(s) archived\n", n)
	return nil
}
