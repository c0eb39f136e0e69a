package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

func (cli *commandLine) deleteMeetings(sectionID string, yes bool) error {
	ctx := context.Background()
	sec, err := cli.secSvc.GetByID(ctx, sectionID)
	if err != nil {
		return err
	}

	if !yes {
		if !isTerminalFunc(int(os.Stdin.Fd())) {
			return fmt.Errorf("refusing to delete without confirmation: pass -yes")
		}
		fmt.Fprintf(cli.out, "Delete every meeting of section #%d (%s)? [y/N] ", sec.SectionNumber, sec.ID)
		answer, _ := bufio.NewReader(cli.in).ReadString('\n')
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			return errAborted
		}
	}

	n, err := cli.schedSvc.DeleteSectionMeetings(ctx, sec.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%d meeting(s) deleted\n", n)
	return nil
}
