// Package seed fills an empty database with a demo team, projects and tasks.
package seed

import (
	"context"
	"fmt"
	"time"

	"project-management-api/internal/auth"
	"project-management-api/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPassword is given to every seeded account.
const DefaultPassword = "password123"

// Result reports what Run inserted.
type Result struct {
	Skipped  bool
	Users    int
	Projects int
	Tasks    int
}

type member struct {
	name  string
	email string
	role  models.Role
}

var team = []member{
	{"Administrateur", "admin@infyproject.com", models.RoleAdmin},
	{"Mamadou Diallo", "mamadou.diallo@infyproject.com", models.RoleDeveloper},
	{"Fatou Sall", "fatou.sall@infyproject.com", models.RoleDeveloper},
	{"Mariama Fall", "mariama.fall@infyproject.com", models.RoleDesigner},
	{"Khadija Sow", "khadija.sow@infyproject.com", models.RoleTester},
	{"Moussa Camara", "moussa.camara@infyproject.com", models.RoleProjectManager},
	{"Awa Diagne", "awa.diagne@infyproject.com", models.RoleProjectManager},
	{"Malick Sy", "malick.sy@infyproject.com", models.RoleDevops},
	{"Samba Niang", "samba.niang@infyproject.com", models.RoleMarketing},
	{"Adama Kane", "adama.kane@infyproject.com", models.RoleSupport},
	{"Fatou Bintou Fall", "fatou.bintou.fall@infyproject.com", models.RoleFinance},
	{"Omar Sene", "omar.sene@infyproject.com", models.RoleHR},
	{"Ibrahima Fall", "ibrahima.fall@consultant.com", models.RoleConsultant},
}

type taskSeed struct {
	titre       string
	description string
	etat        models.TaskState
	dueInDays   int
}

type projectSeed struct {
	name        string
	description string
	dueInDays   int
	budget      int64
	tasks       []taskSeed
}

var catalog = []projectSeed{
	{
		name:        "Développement Site E-commerce",
		description: "Plateforme e-commerce avec paiement en ligne, gestion des stocks et interface administrateur.",
		dueInDays:   60,
		budget:      50000,
		tasks: []taskSeed{
			{"Design de l'interface utilisateur", "Maquettes UI/UX pour toutes les pages", models.TaskDone, -20},
			{"Développement frontend", "Pages React et Tailwind CSS", models.TaskInProgress, 5},
			{"Intégration API paiement", "Paiements sécurisés", models.TaskPending, 2},
			{"Tests unitaires", "Tests de tous les composants", models.TaskPending, 30},
			{"Déploiement production", "Mise en ligne sur le serveur de production", models.TaskPending, 55},
		},
	},
	{
		name:        "Application Mobile Fitness",
		description: "Suivi des entraînements, de la nutrition et des objectifs avec synchronisation cloud.",
		dueInDays:   45,
		budget:      40000,
		tasks: []taskSeed{
			{"Conception de la base de données", "Modéliser utilisateurs et entraînements", models.TaskDone, -30},
			{"Développement API backend", "Endpoints REST de l'application", models.TaskInProgress, -3},
			{"Intégration GPS", "Suivi des parcours et géolocalisation", models.TaskPending, 14},
			{"Système de notifications", "Rappels d'entraînement", models.TaskPending, 21},
		},
	},
	{
		name:        "Système de Gestion RH",
		description: "Recrutement, paie et formations.",
		dueInDays:   90,
		budget:      35000,
		tasks: []taskSeed{
			{"Analyse des besoins", "Rencontres avec les utilisateurs RH", models.TaskDone, -45},
			{"Architecture système", "Conception technique", models.TaskDone, -10},
			{"Module recrutement", "Gestion des candidatures", models.TaskInProgress, 20},
			{"Module paie", "Calcul des salaires et bulletins", models.TaskPending, 50},
		},
	},
	{
		name:        "Refonte Site Corporate",
		description: "Modernisation du site corporate avec design responsive.",
		dueInDays:   -5,
		budget:      25000,
		tasks: []taskSeed{
			{"Audit de l'existant", "Analyse du site actuel", models.TaskDone, -40},
			{"Nouvelle charte graphique", "Identité visuelle", models.TaskDone, -15},
		},
	},
}

// Run inserts the demo data unless the users table already has rows.
// Project owners rotate through the project managers and task assignees
// through the non-admin members.
func Run(ctx context.Context, db *gorm.DB, now time.Time) (Result, error) {
	var res Result

	var existing int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&existing).Error; err != nil {
		return res, fmt.Errorf("count users: %w", err)
	}
	if existing > 0 {
		zap.L().Info("database already populated, skipping seed", zap.Int64("users", existing))
		res.Skipped = true
		return res, nil
	}

	hash, err := auth.HashPassword(DefaultPassword)
	if err != nil {
		return res, fmt.Errorf("hash password: %w", err)
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var managers, workers []models.User
		for _, m := range team {
			u := models.User{Name: m.name, Email: m.email, PasswordHash: hash, Role: m.role}
			if err := tx.Create(&u).Error; err != nil {
				return fmt.Errorf("create user %s: %w", m.email, err)
			}
			res.Users++
			switch {
			case u.Role == models.RoleProjectManager:
				managers = append(managers, u)
				workers = append(workers, u)
			case !u.IsAdmin():
				workers = append(workers, u)
			}
		}

		day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		next := 0
		for i, ps := range catalog {
			description := ps.description
			deadline := day.AddDate(0, 0, ps.dueInDays)
			budget := decimal.NewFromInt(ps.budget)
			p := models.Project{
				Name:        ps.name,
				Description: &description,
				Deadline:    &deadline,
				Budget:      &budget,
				Status:      models.ProjectPending,
				OwnerID:     managers[i%len(managers)].ID,
			}
			if err := tx.Omit(clause.Associations).Create(&p).Error; err != nil {
				return fmt.Errorf("create project %q: %w", ps.name, err)
			}
			res.Projects++

			for _, ts := range ps.tasks {
				details := ts.description
				due := day.AddDate(0, 0, ts.dueInDays).Add(18 * time.Hour)
				assignee := workers[next%len(workers)].ID
				next++
				t := models.Task{
					Titre:       ts.titre,
					Description: &details,
					Etat:        ts.etat,
					Deadline:    &due,
					ProjectID:   p.ID,
					AssignedTo:  &assignee,
				}
				if err := tx.Omit(clause.Associations).Create(&t).Error; err != nil {
					return fmt.Errorf("create task %q: %w", ts.titre, err)
				}
				res.Tasks++
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	zap.L().Info("database seeded",
		zap.Int("users", res.Users),
		zap.Int("projects", res.Projects),
		zap.Int("tasks", res.Tasks),
	)
	return res, nil
}
