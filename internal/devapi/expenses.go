package devapi

import (
	"net/http"
)

// listExpenses handles GET /api/trips/{tripID}/expenses.
func (s *Server) listExpenses(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "tripID")
	if !ok {
		return
	}
	expenses, err := s.store.Expenses(currentUser(r), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]expenseResponse, len(expenses))
	for i, e := range expenses {
		out[i] = expenseToResponse(e)
	}
	writeJSON(w, http.StatusOK, out)
}

// createExpense handles POST /api/trips/{tripID}/expenses.
func (s *Server) createExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "tripID")
	if !ok {
		return
	}
	var req expenseRequest
	if !decode(w, r, &req) {
		return
	}
	e, err := s.store.CreateExpense(currentUser(r), id, req.toInput())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, expenseToResponse(e))
}

// expenseBalances handles GET /api/trips/{tripID}/expenses/balances.
func (s *Server) expenseBalances(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "tripID")
	if !ok {
		return
	}
	balances, err := s.store.Balances(currentUser(r), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balances)
}

// expenseTotal handles GET /api/trips/{tripID}/expenses/total.
func (s *Server) expenseTotal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "tripID")
	if !ok {
		return
	}
	total, err := s.store.Total(currentUser(r), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, totalResponse{Total: total})
}

// deleteExpense handles DELETE /api/expenses/{expenseID}.
func (s *Server) deleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "expenseID")
	if !ok {
		return
	}
	if err := s.store.DeleteExpense(currentUser(r), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
