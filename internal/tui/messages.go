package tui

import (
	"github.com/koustreak/tablescope/internal/bridge"
	"github.com/koustreak/tablescope/internal/schema"
	"github.com/koustreak/tablescope/internal/session"
)

// Messages for Bubble Tea updates

type navigateMsg struct {
	page page
}

type notifyMsg struct {
	text string
}

type connectDone struct {
	outcome session.ConnectOutcome
}

type tableLoaded struct {
	table string
	info  *schema.TableInfo
	err   error
}

type loadDone struct {
	table  string
	notice session.Notice
}

type searchDone struct {
	table   string
	outcome *session.SearchOutcome
	err     error
}

// pickRequest opens the file picker overlay. The chosen path, or "" on
// cancel, is sent on reply.
type pickRequest struct {
	filter bridge.FileFilter
	reply  chan<- string
}
