package main

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/civil"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/trezcool/academia/core/course"
	"github.com/trezcool/academia/core/section"
	"github.com/trezcool/academia/core/user"
)

// fixtures is the layout of a seed file. Sections reference their course by code and their
// instructor by username.
type fixtures struct {
	Users []struct {
		Name     string   `yaml:"name"`
		Username string   `yaml:"username"`
		Email    string   `yaml:"email"`
		Phone    string   `yaml:"phone"`
		Roles    []string `yaml:"roles"`
	} `yaml:"users"`

	Courses []struct {
		Code        string `yaml:"code"`
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
		TotalHours  int    `yaml:"total_hours"`
	} `yaml:"courses"`

	Sections []struct {
		Course     string `yaml:"course"`
		Instructor string `yaml:"instructor"`
		StartDate  string `yaml:"start_date"`
		Location   string `yaml:"location"`
		Capacity   int    `yaml:"capacity"`
	} `yaml:"sections"`
}

func (cli *commandLine) seed(r io.Reader) error {
	var fx fixtures
	if err := yaml.NewDecoder(r).Decode(&fx); err != nil {
		return errors.Wrap(err, "decoding fixtures")
	}
	ctx := context.Background()

	usernames := make(map[string]string)
	for i, fu := range fx.Users {
		nu := user.NewUser{Name: fu.Name, Username: fu.Username, Email: fu.Email, Phone: fu.Phone, Roles: fu.Roles}
		if err := nu.Validate(ctx, cli.validate, cli.usrSvc); err != nil {
			return errors.Wrapf(err, "users[%d]", i)
		}
		usr, err := cli.usrSvc.Create(ctx, nu)
		if err != nil {
			return errors.Wrapf(err, "users[%d]", i)
		}
		usernames[usr.Username] = usr.ID
	}

	codes := make(map[string]string)
	for i, fc := range fx.Courses {
		nc := course.NewCourse{Code: fc.Code, Name: fc.Name, Description: fc.Description, TotalHours: fc.TotalHours}
		if err := nc.Validate(ctx, cli.validate, cli.crsSvc); err != nil {
			return errors.Wrapf(err, "courses[%d]", i)
		}
		crs, err := cli.crsSvc.Create(ctx, nc)
		if err != nil {
			return errors.Wrapf(err, "courses[%d]", i)
		}
		codes[crs.Code] = crs.ID
	}

	for i, fs := range fx.Sections {
		start, err := civil.ParseDate(fs.StartDate)
		if err != nil {
			return errors.Wrapf(err, "sections[%d]: start_date", i)
		}
		ns := section.NewSection{
			CourseID:  codes[fs.Course],
			StartDate: &start,
			Location:  fs.Location,
			Capacity:  fs.Capacity,
		}
		if ns.CourseID == "" {
			return errors.Errorf("sections[%d]: unknown course %q", i, fs.Course)
		}
		if fs.Instructor != "" {
			if ns.InstructorID = usernames[fs.Instructor]; ns.InstructorID == "" {
				return errors.Errorf("sections[%d]: unknown instructor %q", i, fs.Instructor)
			}
		}
		if _, err = cli.secSvc.Create(ctx, ns); err != nil {
			return errors.Wrapf(err, "sections[%d]", i)
		}
	}

	fmt.Fprintf(cli.out, "seeded %d user(s), %d course(s) and %d section(s)\n", len(fx.Users), len(fx.Courses), len(fx.Sections))
	return nil
}
