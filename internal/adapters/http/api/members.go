package api

import "net/http"

// MembersDependencies defines the interface for roster reads.
type MembersDependencies interface {
	Members() []Member
}

// MembersHandler handles roster requests.
type MembersHandler struct {
	deps MembersDependencies
}

// NewMembersHandler creates a new members handler.
func NewMembersHandler(deps MembersDependencies) *MembersHandler {
	return &MembersHandler{deps: deps}
}

// HandleGetMembers handles GET /members requests.
func (h *MembersHandler) HandleGetMembers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Members())
}
