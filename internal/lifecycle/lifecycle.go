// Package lifecycle holds the allowed status transitions for every entity
// with a workflow. A status may always be "moved" to itself.
package lifecycle

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"vgroup-backoffice/internal/database/models"
)

type table[S ~string] map[S]map[S]struct{}

func (t table[S]) can(from, to S) bool {
	if from == to {
		_, known := t[from]
		return known
	}
	allowed, ok := t[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}

func (t table[S]) known(s S) bool {
	_, ok := t[s]
	return ok
}

func (t table[S]) next(from S) []S {
	var out []S
	for to := range t[from] {
		out = append(out, to)
	}
	return out
}

func set[S ~string](states ...S) map[S]struct{} {
	m := make(map[S]struct{}, len(states))
	for _, s := range states {
		m[s] = struct{}{}
	}
	return m
}

var workerTransitions = table[models.WorkerStatus]{
	models.WorkerNewLead:     set(models.WorkerScreening, models.WorkerTerminated),
	models.WorkerScreening:   set(models.WorkerProcessing, models.WorkerTerminated),
	models.WorkerProcessing:  set(models.WorkerAcademy, models.WorkerReady, models.WorkerTerminated),
	models.WorkerAcademy:     set(models.WorkerReady, models.WorkerTerminated),
	models.WorkerReady:       set(models.WorkerDeployed, models.WorkerTerminated),
	models.WorkerDeployed:    set(models.WorkerWorking, models.WorkerTerminated),
	models.WorkerWorking:     set(models.WorkerContractEnd, models.WorkerTerminated),
	models.WorkerContractEnd: set[models.WorkerStatus](),
	models.WorkerTerminated:  set[models.WorkerStatus](),
}

// PAID_OFF is absent from every manual edge; only the ledger sets it.
var loanTransitions = table[models.LoanStatus]{
	models.LoanActive:    set(models.LoanOverdue, models.LoanCancelled),
	models.LoanOverdue:   set(models.LoanActive, models.LoanCancelled),
	models.LoanPaidOff:   set[models.LoanStatus](),
	models.LoanCancelled: set[models.LoanStatus](),
}

var commissionTransitions = table[models.CommissionStatus]{
	models.CommissionPending:   set(models.CommissionApproved, models.CommissionCancelled),
	models.CommissionApproved:  set(models.CommissionPaid, models.CommissionCancelled),
	models.CommissionPaid:      set[models.CommissionStatus](),
	models.CommissionCancelled: set[models.CommissionStatus](),
}

var sosTransitions = table[models.SosStatus]{
	models.SosOpen:       set(models.SosInProgress, models.SosResolved, models.SosClosed),
	models.SosInProgress: set(models.SosResolved, models.SosClosed),
	models.SosResolved:   set(models.SosClosed),
	models.SosClosed:     set[models.SosStatus](),
}

var orderTransitions = table[models.OrderStatus]{
	models.OrderDraft:     set(models.OrderQuoted, models.OrderCancelled),
	models.OrderQuoted:    set(models.OrderApproved, models.OrderDraft, models.OrderCancelled),
	models.OrderApproved:  set(models.OrderDeploying, models.OrderCancelled),
	models.OrderDeploying: set(models.OrderCompleted, models.OrderCancelled),
	models.OrderCompleted: set[models.OrderStatus](),
	models.OrderCancelled: set[models.OrderStatus](),
}

var documentTransitions = table[models.DocumentStatus]{
	models.DocumentPending:  set(models.DocumentVerified, models.DocumentRejected),
	models.DocumentVerified: set(models.DocumentExpired, models.DocumentRejected),
	models.DocumentRejected: set(models.DocumentPending),
	models.DocumentExpired:  set(models.DocumentPending),
}

func CanWorker(from, to models.WorkerStatus) bool { return workerTransitions.can(from, to) }
func CanLoan(from, to models.LoanStatus) bool { return loanTransitions.can(from, to) }
func CanCommission(from, to models.CommissionStatus) bool { return commissionTransitions.can(from, to) }
func CanSos(from, to models.SosStatus) bool { return sosTransitions.can(from, to) }
func CanOrder(from, to models.OrderStatus) bool { return orderTransitions.can(from, to) }
func CanDocument(from, to models.DocumentStatus) bool { return documentTransitions.can(from, to) }

func ValidWorker(s models.WorkerStatus) bool { return workerTransitions.known(s) }
func ValidLoan(s models.LoanStatus) bool { return loanTransitions.known(s) }
func ValidCommission(s models.CommissionStatus) bool { return commissionTransitions.known(s) }
func ValidSos(s models.SosStatus) bool { return sosTransitions.known(s) }
func ValidOrder(s models.OrderStatus) bool { return orderTransitions.known(s) }
func ValidDocument(s models.DocumentStatus) bool { return documentTransitions.known(s) }

// NextWorker lists the states reachable from the given worker status.
func NextWorker(from models.WorkerStatus) []models.WorkerStatus { return workerTransitions.next(from) }

// TerminalCommission reports whether no further manual transition exists.
func TerminalCommission(s models.CommissionStatus) bool {
	return len(commissionTransitions[s]) == 0
}

func check[S ~string](t table[S], entity string, from, to S) error {
	if _, ok := t[to]; !ok {
		return status.Errorf(codes.InvalidArgument, "unknown %s status %q", entity, to)
	}
	if !t.can(from, to) {
		return status.Errorf(codes.FailedPrecondition, "%s cannot move from %s to %s", entity, from, to)
	}
	return nil
}

func CheckWorker(from, to models.WorkerStatus) error {
	return check(workerTransitions, "worker", from, to)
}

func CheckLoan(from, to models.LoanStatus) error {
	return check(loanTransitions, "loan", from, to)
}

func CheckCommission(from, to models.CommissionStatus) error {
	return check(commissionTransitions, "commission", from, to)
}

func CheckSos(from, to models.SosStatus) error {
	return check(sosTransitions, "sos alert", from, to)
}

func CheckOrder(from, to models.OrderStatus) error {
	return check(orderTransitions, "order", from, to)
}

func CheckDocument(from, to models.DocumentStatus) error {
	return check(documentTransitions, "document", from, to)
}
