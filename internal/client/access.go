package client

import (
	"bubblechat/internal/models"
	"bubblechat/internal/utils"
)

// CheckAccess decides whether the room may be joined with the supplied
// password. The error carries the denial reason for user-facing messaging;
// the boolean is the answer.
//
//  1. No room document: fail closed, the room does not exist.
//  2. Room exists but has no access record: legacy room. Repair it to a
//     default public record and grant access.
//  3. Record exists: public grants, otherwise the password must match the
//     stored one exactly.
func (cli *Client) CheckAccess(id, password string) (bool, error) {
	_, found, err := cli.Node.GetRoom(id)
	if err != nil {
		return false, err
	}
	if !found {
		return false, utils.NotFoundError("no chat found")
	}

	access, found, err := cli.Node.GetAccess(id)
	if err != nil {
		return false, err
	}
	if !found {
		cli.Session.Log.Logf("no access record for %s (deprecated chat), writing default", id)
		if err := cli.Node.SetAccess(id, models.DefaultAccess()); err != nil {
			// repair is best-effort; the room still counts as public
			cli.Session.Log.Logf("access repair for %s failed: %v", id, err)
		}
		return true, nil
	}

	if access.Visibility == models.VisibilityPublic || access.Password == password {
		return true, nil
	}
	return false, utils.AccessDeniedError("no rights to access (wrong password)")
}

// HandleInvitation runs the access check for an entered invitation and
// surfaces denials as user-visible alerts. On success the caller decides
// when to open the room; nothing is auto-opened here.
func (cli *Client) HandleInvitation(id, password string) bool {
	ok, err := cli.CheckAccess(id, password)
	if ok {
		return true
	}
	switch {
	case utils.IsNotFound(err):
		cli.alert("Invitation failed", "no chat found")
	case utils.IsAccessDenied(err):
		cli.alert("Invitation failed", "no rights to access (wrong password)")
	default:
		cli.alert("Invitation failed", err.Error())
	}
	return false
}
