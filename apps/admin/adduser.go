package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/academia/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(uname, email, name string, isAdmin, isInstructor bool) (user.User, error) {
	ctx := context.Background()

	var roles []string
	if isAdmin {
		roles = append(roles, user.AdminRoles...)
	}
	if isInstructor {
		roles = append(roles, user.RoleInstructor)
	}

	usr, err := cli.usrSvc.GetByUsernameOrEmail(ctx, uname)
	if err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return user.User{}, err
		}
		if name == "" {
			name = uname
		}
		nu := user.NewUser{Name: name, Username: uname, Email: email, Roles: roles}
		if err = nu.Validate(ctx, cli.validate, cli.usrSvc); err != nil {
			return user.User{}, err
		}
		return cli.usrSvc.Create(ctx, nu)
	}

	active := true
	uu := user.UpdateUser{Name: name, Email: email, IsActive: &active, Roles: mergeRoles(usr.Roles, roles)}
	if err = uu.Validate(ctx, usr, cli.validate, cli.usrSvc); err != nil {
		return user.User{}, err
	}
	return cli.usrSvc.Update(ctx, usr, uu)
}

func mergeRoles(current, added []string) []string {
	merged := append([]string{}, current...)
	for _, role := range added {
		found := false
		for _, r := range merged {
			if r == role {
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, role)
		}
	}
	return merged
}
