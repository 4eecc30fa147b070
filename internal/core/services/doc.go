// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Ingestion turns a patient profile into embedded documents, retrieval
// ranks them for a question, and chat combines the two with the LLM to
// produce a triage decision, pushing an alert when the level demands it.
// When the LLM is missing or fails, a keyword classifier stands in.
package services
