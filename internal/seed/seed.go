// Package seed fills an empty database with reference geography, the
// bootstrap administrator and a weighted-random demo data set. Demo records
// go through the regular services so ledger and lifecycle rules apply.
package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"vgroup-backoffice/internal/database/models"
	"vgroup-backoffice/internal/services/commissions"
	"vgroup-backoffice/internal/services/ledger"
	"vgroup-backoffice/internal/services/operations"
	"vgroup-backoffice/internal/services/user"
	"vgroup-backoffice/internal/services/workforce"
)

type Services struct {
	Users       *user.Service
	Workforce   *workforce.Service
	Ledger      *ledger.Service
	Commissions *commissions.Service
	Operations  *operations.Service
}

type Options struct {
	AdminEmail    string
	AdminPassword string
	AdminName     string
	Agents        int
	Clients       int
	Workers       int
}

func DefaultOptions() Options {
	return Options{Agents: 6, Clients: 6, Workers: 80}
}

// Summary counts what a run created.
type Summary struct {
	AdminCreated bool
	Provinces    int
	Districts    int
	Agents       int
	Clients      int
	Workers      int
	Loans        int
	Payments     int
	Commissions  int
	SosAlerts    int
	Orders       int
	Documents    int
}

type Seeder struct {
	db     *gorm.DB
	svc    Services
	rng    *Sampler
	logger *zap.Logger
	now    time.Time

	adminID   int64
	laoPlaces []models.Province
	thaiByKey map[string]models.Province
}

func New(db *gorm.DB, svc Services, rng *Sampler, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{db: db, svc: svc, rng: rng, logger: logger, now: time.Now()}
}

// Run is safe to repeat: geography is only loaded into empty tables and
// demo data is skipped once any worker exists.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Summary, error) {
	sum := &Summary{}

	if err := s.seedGeo(ctx, sum); err != nil {
		return sum, err
	}

	created, err := s.svc.Users.EnsureAdmin(ctx, opts.AdminEmail, opts.AdminPassword, opts.AdminName)
	if err != nil {
		return sum, fmt.Errorf("ensure admin: %w", err)
	}
	sum.AdminCreated = created
	if err := s.loadAdmin(ctx, opts.AdminEmail); err != nil {
		return sum, err
	}

	var workers int64
	if err := s.db.WithContext(ctx).Model(&models.Worker{}).Count(&workers).Error; err != nil {
		return sum, fmt.Errorf("count workers: %w", err)
	}
	if workers > 0 {
		s.logger.Info("demo data already present, skipping", zap.Int64("workers", workers))
		return sum, nil
	}

	if err := s.loadPlaces(ctx); err != nil {
		return sum, err
	}

	agents, err := s.seedAgents(ctx, opts.Agents, sum)
	if err != nil {
		return sum, err
	}
	clients, err := s.seedClients(ctx, opts.Clients, sum)
	if err != nil {
		return sum, err
	}
	roster, err := s.seedWorkers(ctx, opts.Workers, agents, clients, sum)
	if err != nil {
		return sum, err
	}
	if err := s.seedLoans(ctx, roster, sum); err != nil {
		return sum, err
	}
	if err := s.seedCommissions(ctx, roster, sum); err != nil {
		return sum, err
	}
	if err := s.seedSos(ctx, roster, sum); err != nil {
		return sum, err
	}
	if err := s.seedOrders(ctx, clients, sum); err != nil {
		return sum, err
	}
	if err := s.seedDocuments(ctx, roster, sum); err != nil {
		return sum, err
	}

	return sum, nil
}

func (s *Seeder) seedGeo(ctx context.Context, sum *Summary) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Province{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count provinces: %w", err)
	}
	if count > 0 {
		return nil
	}

	rows := make([]models.Province, 0, len(provinces))
	for _, p := range provinces {
		row := models.Province{Country: p.Country, Code: p.Code, NameTh: p.NameTh, NameLo: p.NameLo, NameEn: p.NameEn}
		for _, d := range p.Districts {
			row.Districts = append(row.Districts, models.District{NameTh: d.NameTh, NameLo: d.NameLo, NameEn: d.NameEn})
		}
		rows = append(rows, row)
		sum.Districts += len(row.Districts)
	}
	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("insert provinces: %w", err)
	}
	sum.Provinces = len(rows)

	s.svc.Workforce.InvalidateGeo(ctx)
	s.logger.Info("geography seeded", zap.Int("provinces", sum.Provinces), zap.Int("districts", sum.Districts))
	return nil
}

func (s *Seeder) loadAdmin(ctx context.Context, email string) error {
	var admin models.User
	err := s.db.WithContext(ctx).Select("id").
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&admin).Error
	if err != nil {
		return fmt.Errorf("load admin: %w", err)
	}
	s.adminID = admin.ID
	return nil
}

func (s *Seeder) loadPlaces(ctx context.Context) error {
	var all []models.Province
	if err := s.db.WithContext(ctx).Preload("Districts").Order("code").Find(&all).Error; err != nil {
		return fmt.Errorf("load provinces: %w", err)
	}
	s.thaiByKey = make(map[string]models.Province)
	for _, p := range all {
		switch p.Country {
		case "LA":
			s.laoPlaces = append(s.laoPlaces, p)
		case "TH":
			s.thaiByKey[p.Code] = p
		}
	}
	return nil
}

func (s *Seeder) laoPlace() (*int64, *int64) {
	if len(s.laoPlaces) == 0 {
		return nil, nil
	}
	p := Element(s.rng, s.laoPlaces)
	provinceID := p.ID
	if len(p.Districts) == 0 {
		return &provinceID, nil
	}
	districtID := Element(s.rng, p.Districts).ID
	return &provinceID, &districtID
}

func (s *Seeder) seedAgents(ctx context.Context, n int, sum *Summary) ([]models.Agent, error) {
	out := make([]models.Agent, 0, n)
	for i := 0; i < n; i++ {
		name := agentNames[i%len(agentNames)]
		if i >= len(agentNames) {
			name = fmt.Sprintf("%s %d", name, i/len(agentNames)+1)
		}
		tier := Pick(s.rng, tierWeights)
		rate := tierRate(tier)
		provinceID, _ := s.laoPlace()

		agent, err := s.svc.Workforce.CreateAgent(ctx, workforce.AgentInput{
			Name:           &name,
			Phone:          strPtr("+856 20 " + s.rng.Digits(8)),
			Country:        strPtr("LA"),
			ProvinceID:     provinceID,
			CommissionRate: &rate,
			Tier:           &tier,
		})
		if err != nil {
			return nil, fmt.Errorf("create agent %q: %w", name, err)
		}
		out = append(out, *agent)
	}
	sum.Agents = len(out)
	return out, nil
}

func (s *Seeder) seedClients(ctx context.Context, n int, sum *Summary) ([]models.Client, error) {
	out := make([]models.Client, 0, n)
	for i := 0; i < n; i++ {
		c := companies[i%len(companies)]
		name := c.Name
		if i >= len(companies) {
			name = fmt.Sprintf("%s (Branch %d)", name, i/len(companies)+1)
		}
		in := workforce.ClientInput{
			CompanyName: &name,
			TaxID:       strPtr("0105" + s.rng.Digits(9)),
			Industry:    strPtr(c.Industry),
			ContactName: strPtr("HR Department"),
			Phone:       strPtr("+66 2 " + s.rng.Digits(7)),
		}
		if p, ok := s.thaiByKey[c.Province]; ok {
			id := p.ID
			in.ProvinceID = &id
		}
		client, err := s.svc.Workforce.CreateClient(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("create client %q: %w", name, err)
		}
		out = append(out, *client)
	}
	sum.Clients = len(out)
	return out, nil
}

func tierRate(tier models.AgentTier) decimal.Decimal {
	switch tier {
	case models.TierGold:
		return decimal.NewFromInt(10)
	case models.TierSilver:
		return decimal.RequireFromString("7.5")
	}
	return decimal.NewFromInt(5)
}

// workerPath lists the statuses a new lead passes through to reach target.
func workerPath(target models.WorkerStatus, viaAcademy bool) []models.WorkerStatus {
	order := []models.WorkerStatus{models.WorkerScreening, models.WorkerProcessing}
	if viaAcademy || target == models.WorkerAcademy {
		order = append(order, models.WorkerAcademy)
	}
	order = append(order, models.WorkerReady, models.WorkerDeployed, models.WorkerWorking, models.WorkerContractEnd)
	for i, st := range order {
		if st == target {
			return order[:i+1]
		}
	}
	return nil
}

var terminatedFrom = []Weighted[models.WorkerStatus]{
	{models.WorkerScreening, 3},
	{models.WorkerProcessing, 2},
	{models.WorkerWorking, 3},
}

func (s *Seeder) seedWorkers(ctx context.Context, n int, agents []models.Agent, clients []models.Client, sum *Summary) ([]models.Worker, error) {
	out := make([]models.Worker, 0, n)
	for i := 0; i < n; i++ {
		gender := models.GenderMale
		first := Element(s.rng, maleFirstNames)
		if s.rng.Chance(0.45) {
			gender = models.GenderFemale
			first = Element(s.rng, femaleFirstNames)
		}
		last := Element(s.rng, lastNames)
		dob := time.Date(s.rng.Between(1980, 2004), time.Month(s.rng.Between(1, 12)), s.rng.Between(1, 28), 0, 0, 0, 0, time.UTC)
		provinceID, districtID := s.laoPlace()
		position := Pick(s.rng, positions)

		in := workforce.WorkerInput{
			FirstNameEn: &first.En,
			LastNameEn:  &last.En,
			FirstNameLo: &first.Lo,
			LastNameLo:  &last.Lo,
			FirstNameTh: &first.Th,
			LastNameTh:  &last.Th,
			Gender:      &gender,
			DateOfBirth: &dob,
			Nationality: strPtr("LA"),
			PassportNo:  strPtr("P" + s.rng.Digits(7)),
			Phone:       strPtr("+856 20 " + s.rng.Digits(8)),
			ProvinceID:  provinceID,
			DistrictID:  districtID,
			Position:    &position,
		}
		if len(agents) > 0 && s.rng.Chance(0.85) {
			id := Element(s.rng, agents).ID
			in.AgentID = &id
		}

		worker, err := s.svc.Workforce.CreateWorker(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("create worker: %w", err)
		}

		target := Pick(s.rng, workerStatusWeights)
		var path []models.WorkerStatus
		if target == models.WorkerTerminated {
			path = append(workerPath(Pick(s.rng, terminatedFrom), false), models.WorkerTerminated)
		} else {
			path = workerPath(target, s.rng.Chance(0.4))
		}
		for _, next := range path {
			step := workforce.WorkerInput{Status: &next}
			if next == models.WorkerDeployed && len(clients) > 0 {
				clientID := Element(s.rng, clients).ID
				deployedAt := s.rng.DaysAgo(s.now, 540)
				step.ClientID = &clientID
				step.DeployedAt = &deployedAt
			}
			updated, err := s.svc.Workforce.UpdateWorker(ctx, worker.ID, step)
			if err != nil {
				return nil, fmt.Errorf("advance worker %s to %s: %w", worker.Code, next, err)
			}
			worker = updated
		}
		out = append(out, *worker)
	}
	sum.Workers = len(out)
	return out, nil
}

func onSite(w models.Worker) bool {
	return w.Status == models.WorkerDeployed || w.Status == models.WorkerWorking || w.Status == models.WorkerContractEnd
}

func (s *Seeder) seedLoans(ctx context.Context, roster []models.Worker, sum *Summary) error {
	for _, w := range roster {
		if !onSite(w) && w.Status != models.WorkerReady {
			continue
		}
		if !s.rng.Chance(0.6) {
			continue
		}
		issuedAt := s.rng.DaysAgo(s.now, 360)
		dueAt := issuedAt.AddDate(0, 12, 0)
		loan, err := s.svc.Ledger.CreateLoan(ctx, ledger.CreateLoanInput{
			WorkerID:    w.ID,
			Principal:   s.rng.Amount(3000, 20000, 500),
			Currency:    "THB",
			Purpose:     Element(s.rng, loanPurposes),
			IssuedAt:    &issuedAt,
			DueAt:       &dueAt,
			CreatedByID: s.adminID,
		})
		if err != nil {
			return fmt.Errorf("create loan for worker %s: %w", w.Code, err)
		}
		sum.Loans++

		if w.Status == models.WorkerReady {
			continue
		}
		installment := loan.Principal.Div(decimal.NewFromInt(int64(s.rng.Between(3, 10)))).Round(0)
		payments := s.rng.Between(0, 6)
		for i := 0; i < payments && loan.Balance.IsPositive(); i++ {
			amount := decimal.Min(installment, loan.Balance)
			if s.rng.Chance(0.1) {
				amount = loan.Balance
			}
			paidAt := issuedAt.AddDate(0, i+1, 0)
			if paidAt.After(s.now) {
				break
			}
			_, updated, err := s.svc.Ledger.RecordPayment(ctx, ledger.RecordPaymentInput{
				LoanID:       loan.ID,
				Amount:       amount,
				Method:       Pick(s.rng, paymentMethods),
				PaidAt:       &paidAt,
				RecordedByID: s.adminID,
			})
			if err != nil {
				return fmt.Errorf("record payment on loan %d: %w", loan.ID, err)
			}
			loan = updated
			sum.Payments++
		}

		if loan.Status == models.LoanActive && s.rng.Chance(0.15) {
			if _, err := s.svc.Ledger.UpdateLoanStatus(ctx, loan.ID, models.LoanOverdue); err != nil {
				return fmt.Errorf("mark loan %d overdue: %w", loan.ID, err)
			}
		}
	}
	return nil
}

func (s *Seeder) seedCommissions(ctx context.Context, roster []models.Worker, sum *Summary) error {
	for _, w := range roster {
		if w.AgentID == nil || !onSite(w) || !s.rng.Chance(0.7) {
			continue
		}
		workerID := w.ID
		c, err := s.svc.Commissions.Create(ctx, commissions.CreateInput{
			AgentID:     *w.AgentID,
			WorkerID:    &workerID,
			Amount:      s.rng.Amount(500, 3000, 100),
			Description: "Placement fee for " + w.Code,
		})
		if err != nil {
			return fmt.Errorf("create commission for worker %s: %w", w.Code, err)
		}
		sum.Commissions++

		switch Pick(s.rng, commissionOutcomes) {
		case models.CommissionApproved:
			_, err = s.svc.Commissions.Approve(ctx, c.ID, s.adminID, "")
		case models.CommissionPaid:
			if _, err = s.svc.Commissions.Approve(ctx, c.ID, s.adminID, ""); err == nil {
				_, err = s.svc.Commissions.MarkPaid(ctx, c.ID, s.adminID, "TRF-"+s.rng.Digits(8))
			}
		case models.CommissionCancelled:
			_, err = s.svc.Commissions.Cancel(ctx, c.ID, s.adminID, "Worker left before probation ended")
		}
		if err != nil {
			return fmt.Errorf("settle commission %d: %w", c.ID, err)
		}
	}
	return nil
}

func sosPath(target models.SosStatus) []models.SosStatus {
	switch target {
	case models.SosInProgress:
		return []models.SosStatus{models.SosInProgress}
	case models.SosResolved:
		return []models.SosStatus{models.SosInProgress, models.SosResolved}
	case models.SosClosed:
		return []models.SosStatus{models.SosInProgress, models.SosResolved, models.SosClosed}
	}
	return nil
}

func (s *Seeder) seedSos(ctx context.Context, roster []models.Worker, sum *Summary) error {
	for _, w := range roster {
		if !onSite(w) || !s.rng.Chance(0.2) {
			continue
		}
		tpl := Pick(s.rng, sosTemplates)
		workerID := w.ID
		alert, err := s.svc.Operations.CreateSos(ctx, operations.CreateSosInput{
			WorkerID: &workerID,
			Priority: tpl.Priority,
			Category: tpl.Category,
			Message:  tpl.Message,
		})
		if err != nil {
			return fmt.Errorf("create sos for worker %s: %w", w.Code, err)
		}
		sum.SosAlerts++

		for _, next := range sosPath(Pick(s.rng, sosOutcomes)) {
			in := operations.UpdateSosInput{Status: next, UserID: s.adminID}
			if next == models.SosResolved {
				in.Resolution = strPtr("Coordinator contacted employer and worker; issue settled")
			}
			if _, err := s.svc.Operations.UpdateSosStatus(ctx, alert.ID, in); err != nil {
				return fmt.Errorf("advance sos %d to %s: %w", alert.ID, next, err)
			}
		}
	}
	return nil
}

func orderPath(target models.OrderStatus) []models.OrderStatus {
	if target == models.OrderCancelled {
		return []models.OrderStatus{models.OrderCancelled}
	}
	order := []models.OrderStatus{models.OrderQuoted, models.OrderApproved, models.OrderDeploying, models.OrderCompleted}
	for i, st := range order {
		if st == target {
			return order[:i+1]
		}
	}
	return nil
}

func (s *Seeder) seedOrders(ctx context.Context, clients []models.Client, sum *Summary) error {
	for _, c := range clients {
		for i, n := 0, s.rng.Between(1, 3); i < n; i++ {
			clientID := c.ID
			quantity := s.rng.Between(5, 40)
			price := s.rng.Amount(8000, 15000, 500)
			requiredBy := s.now.AddDate(0, 0, s.rng.Between(14, 120))
			order, err := s.svc.Operations.CreateOrder(ctx, operations.OrderInput{
				ClientID:    &clientID,
				Position:    strPtr(Pick(s.rng, positions)),
				Quantity:    &quantity,
				Nationality: strPtr("LA"),
				UnitPrice:   &price,
				RequiredBy:  &requiredBy,
			})
			if err != nil {
				return fmt.Errorf("create order for client %d: %w", c.ID, err)
			}
			sum.Orders++

			for _, next := range orderPath(Pick(s.rng, orderOutcomes)) {
				if _, err := s.svc.Operations.UpdateOrder(ctx, order.ID, operations.OrderInput{Status: &next}); err != nil {
					return fmt.Errorf("advance order %s to %s: %w", order.Code, next, err)
				}
			}
		}
	}
	return nil
}

func (s *Seeder) seedDocuments(ctx context.Context, roster []models.Worker, sum *Summary) error {
	for _, w := range roster {
		var types []string
		switch {
		case onSite(w):
			types = documentTypes
		case w.Status == models.WorkerProcessing || w.Status == models.WorkerAcademy || w.Status == models.WorkerReady:
			types = documentTypes[:1]
		default:
			continue
		}

		for _, docType := range types {
			workerID := w.ID
			issued := s.rng.DaysAgo(s.now, 700)
			// Some expiries land inside the alert window, some already passed.
			expiry := s.now.AddDate(0, 0, s.rng.Between(-20, 720))
			doc, err := s.svc.Operations.CreateDocument(ctx, operations.DocumentInput{
				WorkerID:   &workerID,
				Type:       strPtr(docType),
				Number:     strPtr(docType[:2] + s.rng.Digits(8)),
				IssuedAt:   &issued,
				ExpiryDate: &expiry,
			})
			if err != nil {
				return fmt.Errorf("create %s for worker %s: %w", docType, w.Code, err)
			}
			sum.Documents++

			var path []models.DocumentStatus
			switch {
			case s.rng.Chance(0.05):
				path = []models.DocumentStatus{models.DocumentRejected}
			case expiry.Before(s.now):
				path = []models.DocumentStatus{models.DocumentVerified, models.DocumentExpired}
			case s.rng.Chance(0.8):
				path = []models.DocumentStatus{models.DocumentVerified}
			}
			for _, next := range path {
				if _, err := s.svc.Operations.UpdateDocument(ctx, doc.ID, operations.DocumentInput{Status: &next}); err != nil {
					return fmt.Errorf("advance document %d to %s: %w", doc.ID, next, err)
				}
			}
		}
	}
	return nil
}

func strPtr(s string) *string {
	return &s
}
