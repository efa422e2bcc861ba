package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/konnekonnekonne/Little-Helpers/internal/ledger"
)

func (s *Server) handleListProjects(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Ledger.Projects())
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decode(w, r, &req) {
		return
	}

	project, err := s.Ledger.CreateProject(r.Context(), req.Name)
	writeMutation(w, http.StatusCreated, project, err)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "projectID")
	if !ok {
		return
	}

	project, err := s.Ledger.Project(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "projectID")
	if !ok {
		return
	}
	writeMutation(w, http.StatusOK, map[string]string{"deleted": id.String()},
		s.Ledger.DeleteProject(r.Context(), id))
}

func (s *Server) handleAddPerson(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathUUID(w, r, "projectID")
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if !decode(w, r, &req) {
		return
	}

	person, err := s.Ledger.AddPerson(r.Context(), projectID, req.Name)
	writeMutation(w, http.StatusCreated, person, err)
}

func (s *Server) handleRemovePerson(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathUUID(w, r, "projectID")
	if !ok {
		return
	}
	personID, ok := pathUUID(w, r, "personID")
	if !ok {
		return
	}
	writeMutation(w, http.StatusOK, map[string]string{"removed": personID.String()},
		s.Ledger.RemovePerson(r.Context(), projectID, personID))
}

type expenseRequest struct {
	Title        string          `json:"title"`
	Amount       decimal.Decimal `json:"amount"`
	PaidBy       uuid.UUID       `json:"paidBy"`
	Participants []uuid.UUID     `json:"participants"`
	Date         *time.Time      `json:"date,omitempty"`
}

func (r expenseRequest) input() ledger.ExpenseInput {
	in := ledger.ExpenseInput{
		Title:        r.Title,
		Amount:       r.Amount,
		PaidBy:       r.PaidBy,
		Participants: r.Participants,
	}
	if r.Date != nil {
		in.Date = *r.Date
	}
	return in
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathUUID(w, r, "projectID")
	if !ok {
		return
	}

	var req expenseRequest
	if !decode(w, r, &req) {
		return
	}

	expense, err := s.Ledger.AddExpense(r.Context(), projectID, req.input())
	writeMutation(w, http.StatusCreated, expense, err)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathUUID(w, r, "projectID")
	if !ok {
		return
	}
	expenseID, ok := pathUUID(w, r, "expenseID")
	if !ok {
		return
	}

	var req expenseRequest
	if !decode(w, r, &req) {
		return
	}

	expense, err := s.Ledger.UpdateExpense(r.Context(), projectID, expenseID, req.input())
	writeMutation(w, http.StatusOK, expense, err)
}

func (s *Server) handleRemoveExpense(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathUUID(w, r, "projectID")
	if !ok {
		return
	}
	expenseID, ok := pathUUID(w, r, "expenseID")
	if !ok {
		return
	}
	writeMutation(w, http.StatusOK, map[string]string{"removed": expenseID.String()},
		s.Ledger.RemoveExpense(r.Context(), projectID, expenseID))
}

func (s *Server) handleSettlements(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathUUID(w, r, "projectID")
	if !ok {
		return
	}

	settlements, err := s.Ledger.Settlements(projectID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settlements)
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathUUID(w, r, "projectID")
	if !ok {
		return
	}

	balances, err := s.Ledger.Balances(projectID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balances)
}
