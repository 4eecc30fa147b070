// Package domain holds the postop entities shared by every layer.
//
// A PatientProfile is split into PatientDocuments at ingestion. Retrieval
// answers with RetrievalHits, and every chat turn ends in a TriageDecision;
// urgent decisions produce an Alert. AppSettings carries the AI provider and
// retrieval configuration.
//
// Only the standard library may be imported here.
package domain
