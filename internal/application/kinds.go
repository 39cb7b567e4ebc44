package application

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/example/knowledge-dashboard/internal/calendar"
)

// ErrUnknownKind is returned for a resource kind outside the closed set.
var ErrUnknownKind = errors.New("application: unknown resource kind")

// Kind identifies one of the dashboard resource collections.
type Kind string

const (
	KindCourse        Kind = "course"
	KindTutorial      Kind = "tutorial"
	KindTool          Kind = "tool"
	KindDoc           Kind = "doc"
	KindCertification Kind = "certification"
	KindCloudStorage  Kind = "cloud_storage"
	KindDataAnalytics Kind = "data_analytics"
	KindGenerativeAI  Kind = "generative_ai"
	KindWorkshop      Kind = "workshop"
	KindSubscription  Kind = "subscription"
)

// Kinds lists every resource kind in display order.
func Kinds() []Kind {
	return []Kind{
		KindCourse, KindTutorial, KindTool, KindDoc, KindCertification,
		KindCloudStorage, KindDataAnalytics, KindGenerativeAI, KindWorkshop, KindSubscription,
	}
}

// ParseKind resolves a kind from its path form. Hyphens and plurals are accepted,
// so "cloud-storage" and "courses" both resolve.
func ParseKind(value string) (Kind, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(value)), "-", "_")
	for _, k := range Kinds() {
		if normalized == string(k) || normalized == string(k)+"s" {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, value)
}

// Label returns the display label of the collection.
func (k Kind) Label() string {
	switch k {
	case KindCourse:
		return "Cursos"
	case KindTutorial:
		return "Tutoriales"
	case KindTool:
		return "Herramientas"
	case KindDoc:
		return "Documentación"
	case KindCertification:
		return "Certificaciones"
	case KindCloudStorage:
		return "Almacenamiento en la nube"
	case KindDataAnalytics:
		return "Análisis de datos"
	case KindGenerativeAI:
		return "IA generativa"
	case KindWorkshop:
		return "Talleres"
	case KindSubscription:
		return "Suscripciones"
	}
	return ""
}

// BillingCycle values accepted for subscriptions.
const (
	BillingMonthly = "monthly"
	BillingYearly  = "yearly"
)

// validateAttributes applies the kind specific attribute rules.
func validateAttributes(kind Kind, attrs map[string]string, vErr *ValidationError) {
	value := func(key string) string {
		return strings.TrimSpace(attrs[key])
	}
	requireAttr := func(key string) bool {
		if value(key) == "" {
			vErr.add("attributes."+key, key+" is required")
			return false
		}
		return true
	}
	dateAttr := func(key string) {
		if v := value(key); v != "" {
			if _, err := time.Parse(time.DateOnly, v); err != nil {
				if _, err := calendar.ParseTimestamp(v, time.UTC); err != nil {
					vErr.add("attributes."+key, key+" must be an ISO-8601 date")
				}
			}
		}
	}

	switch kind {
	case KindCertification:
		requireAttr("issuer")
		dateAttr("issued_on")
		dateAttr("expires_on")
	case KindSubscription:
		if requireAttr("price") {
			price, err := strconv.ParseFloat(value("price"), 64)
			if err != nil || price < 0 {
				vErr.add("attributes.price", "price must be a non-negative number")
			}
		}
		if requireAttr("billing_cycle") {
			switch strings.ToLower(value("billing_cycle")) {
			case BillingMonthly, BillingYearly:
			default:
				vErr.add("attributes.billing_cycle", "billing_cycle must be monthly or yearly")
			}
		}
		dateAttr("renews_on")
	case KindWorkshop:
		if requireAttr("date") {
			dateAttr("date")
		}
	case KindCourse, KindTutorial, KindTool, KindDoc, KindCloudStorage, KindDataAnalytics, KindGenerativeAI:
	}
}

// normalizeAttributes trims keys and values and drops empty entries.
func normalizeAttributes(kind Kind, attrs map[string]string) map[string]string {
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		key := strings.ToLower(strings.TrimSpace(k))
		val := strings.TrimSpace(v)
		if key == "" || val == "" {
			continue
		}
		out[key] = val
	}
	if kind == KindSubscription {
		if cycle, ok := out["billing_cycle"]; ok {
			out["billing_cycle"] = strings.ToLower(cycle)
		}
	}
	return out
}
