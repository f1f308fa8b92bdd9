// Package viewmodel orchestrates the per-screen flows: it pulls from the
// repositories, writes view state into the stores, guards permissions and
// drives navigation. Nothing here touches the backend directly.
package viewmodel

import "errors"

// Navigator triggers screen changes. The presentation layer supplies the
// implementation; viewmodels only ever ask for a route by name.
type Navigator interface {
	Push(route string, params map[string]string)
	Back()
}

// Route names, shared with the presentation layer.
const (
	RouteHome              = "home"
	RouteLogin             = "login"
	RouteSearch            = "search"
	RouteServiceDetail     = "service-detail"
	RouteServiceCreate     = "service-create"
	RouteApplications      = "applications"
	RouteApplicationDetail = "application-detail"
	RouteConversations     = "conversations"
	RouteConversation      = "conversation"
	RouteProfile           = "profile"
)

var (
	// ErrNotSignedIn is returned when an operation needs a session and
	// there is none.
	ErrNotSignedIn = errors.New("not signed in")
	// ErrPermissionDenied is returned when the signed-in user may not
	// perform the operation on the target entity.
	ErrPermissionDenied = errors.New("permission denied")
)

// noopNavigator lets viewmodels be constructed without a presentation
// layer attached, as in tests that only assert on store state.
type noopNavigator struct{}

func (noopNavigator) Push(string, map[string]string) {}
func (noopNavigator) Back()                          {}

// NoopNavigator returns a Navigator that ignores every call.
func NoopNavigator() Navigator { return noopNavigator{} }
