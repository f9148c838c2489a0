// Package scoring computes metabolic interaction scores for microbial communities.
//
// Scorers:
//   - MRO: metabolic resource overlap between two members' minimal media
//   - MIP: metabolic interaction potential, nutrients a community saves by cross-feeding
//   - MP: metabolites each member can produce for the others
//   - MU: how often a member takes up each metabolite the others can provide
//   - SC: how often a member needs each other member to grow
//   - SMETANA: the per-direction combination of MU, SC and MP
//
// Every scorer reads models through fba sessions, so a models.Model is never
// mutated and concurrent runs need distinct model instances (see Screen).
// The Orchestrator sequences the scorers, caches minimal media and production
// profiles, and checks growth preconditions when it is built.
package scoring
