package session

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/koustreak/tablescope/internal/backend"
	"github.com/koustreak/tablescope/internal/bridge"
	"github.com/koustreak/tablescope/internal/errs"
	"github.com/koustreak/tablescope/internal/logger"
)

// NoticeKind tells apart the outcomes of a file load.
type NoticeKind int

const (
	NoticeNoFile    NoticeKind = iota // picker dismissed
	NoticePicker                      // picker failed or is busy
	NoticeWrongType                   // extension rejected locally
	NoticeResult                      // backend answered
	NoticeTransport                   // backend unreachable or returned an error status
	NoticeDecode                      // backend answer unreadable
	NoticeBusy                        // a load is already in flight
)

func (k NoticeKind) String() string {
	switch k {
	case NoticeNoFile:
		return "no_file"
	case NoticePicker:
		return "picker"
	case NoticeWrongType:
		return "wrong_type"
	case NoticeResult:
		return "result"
	case NoticeTransport:
		return "transport"
	case NoticeDecode:
		return "decode"
	case NoticeBusy:
		return "busy"
	default:
		return "unknown"
	}
}

// Notice is the user-visible outcome of Intake.Load.
type Notice struct {
	Kind    NoticeKind
	Message string
	Path    string // set once a file was picked
	Err     error
}

// Messages shown for the local checks.
const (
	MsgNoFile = "No File Selected"
	MsgBusy   = "A file load is already in progress"
)

// Intake drives picking a CSV file and sending it to the backend.
type Intake struct {
	bridge     bridge.Bridge
	client     BulkInserter
	extensions []string
	log        *logger.Logger

	inflight atomic.Bool
}

// NewIntake creates an intake accepting files with one of extensions
// (leading dot, any case). No extensions means ".csv".
func NewIntake(br bridge.Bridge, client BulkInserter, extensions []string, log *logger.Logger) *Intake {
	if len(extensions) == 0 {
		extensions = []string{".csv"}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Intake{
		bridge:     br,
		client:     client,
		extensions: append([]string(nil), extensions...),
		log:        log.Named("intake"),
	}
}

// Load picks a file and bulk-inserts it into table. Each step short-circuits:
// nothing is sent unless a file with an accepted extension was picked.
func (in *Intake) Load(ctx context.Context, table string) Notice {
	if !in.inflight.CompareAndSwap(false, true) {
		return Notice{Kind: NoticeBusy, Message: MsgBusy, Err: errs.New(errs.ErrKindBusy, "file load already in progress")}
	}
	defer in.inflight.Store(false)

	// The path lives only for this call.
	path, ok, err := in.bridge.PickFile(ctx)
	if err != nil {
		return Notice{Kind: NoticePicker, Message: pickerMessage(err), Err: err}
	}
	if !ok {
		return Notice{Kind: NoticeNoFile, Message: MsgNoFile}
	}

	if !HasAcceptedExtension(path, in.extensions) {
		return Notice{
			Kind:    NoticeWrongType,
			Message: WrongTypeMessage(in.extensions),
			Path:    path,
			Err:     errs.Newf(errs.ErrKindInvalidInput, "%s is not an accepted file type", filepath.Base(path)),
		}
	}

	log := in.log.With().Str("table", table).Str("file", path).Logger()
	log.Info("bulk insert")

	res, err := in.client.BulkInsert(ctx, backend.BulkInsertRequest{File: path, Table: table})
	if err != nil {
		kind := NoticeTransport
		if errs.IsDecode(err) {
			kind = NoticeDecode
		}
		log.WarnWith("bulk insert failed", err, nil)
		return Notice{Kind: kind, Message: Describe(err, "Bulk insert"), Path: path, Err: err}
	}

	return Notice{Kind: NoticeResult, Message: res.Message, Path: path}
}

// HasAcceptedExtension reports whether path ends in one of extensions,
// ignoring case.
func HasAcceptedExtension(path string, extensions []string) bool {
	ext := filepath.Ext(path)
	for _, e := range extensions {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

// WrongTypeMessage is the notice shown for a rejected extension.
func WrongTypeMessage(extensions []string) string {
	return "Must Select " + strings.Join(extensions, " or ") + " file"
}

func pickerMessage(err error) string {
	if errs.IsBusy(err) {
		return "A file picker is already open"
	}
	var e *errs.Error
	if errors.As(err, &e) {
		return "Could not open file picker: " + e.Message
	}
	return "Could not open file picker: " + err.Error()
}
