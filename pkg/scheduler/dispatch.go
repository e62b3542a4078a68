package scheduler

import (
	"fmt"
	"sort"

	"github.com/galp2508/shavzak-sub000/pkg/models"
)

// Env is the mutable state a dispatch call operates against: the roster
// policy, the candidate universe, and the evolving schedule and workload of
// the current generation run.
type Env struct {
	Roster   *models.Roster
	Persons  map[string]*models.Person
	Platoons map[string]*models.Platoon
	Schedule models.Schedule
	Workload models.PlatoonWorkload
	Scorer   *Scorer

	// MinRest is the strict rest floor; EmergencyRest is the reduced floor
	// tried when no candidate passes the strict one.
	MinRest       int
	EmergencyRest int
	Emergency     bool
}

// EffectiveRest resolves the rest floor for one instance: zero for base
// tasks and for reuse-for-standby instances, otherwise the strict floor.
func (env *Env) EffectiveRest(inst *models.TaskInstance) int {
	if inst.IsBaseTask || inst.ReuseSoldiersForStandby {
		return 0
	}
	return env.MinRest
}

// Failure describes why a dispatcher could not fill an instance.
type Failure struct {
	Kind    models.FailureKind
	Missing map[string]int
}

func shortfall(missing map[string]int, class string, n int) map[string]int {
	if missing == nil {
		missing = make(map[string]int)
	}
	missing[class] += n
	return missing
}

type dispatchFunc func(env *Env, inst *models.TaskInstance, pool []*models.Person) (*models.DispatchResult, *Failure)

// dispatchTable keys the archetype-specific procedures.
var dispatchTable = map[models.Archetype]dispatchFunc{
	models.Patrol:      dispatchPatrol,
	models.Guard:       dispatchGuard,
	models.StandbyA:    dispatchStandbyA,
	models.StandbyB:    dispatchStandbyB,
	models.Operations:  dispatchOperations,
	models.Kitchen:     dispatchKitchen,
	models.DutyOfficer: dispatchDutyOfficer,
}

// Dispatch fills one instance: it builds the availability-filtered pool
// (with the emergency-rest fallback), runs the archetype procedure, and on
// success commits the selections into the schedule and workload counters.
func Dispatch(env *Env, inst *models.TaskInstance) (*models.DispatchResult, *Failure) {
	fn, ok := dispatchTable[inst.Archetype]
	if !ok {
		return nil, &Failure{Kind: models.FailureHard}
	}

	pool, poolWarnings := env.candidatePool(inst)
	if len(pool) == 0 {
		return nil, &Failure{Kind: models.FailureHard}
	}

	res, fail := fn(env, inst, pool)
	if fail != nil {
		return nil, fail
	}
	res.Warnings = append(poolWarnings, res.Warnings...)
	env.commit(inst, res)
	return res, nil
}

// candidatePool filters the universe through the availability oracle. If no
// candidate passes the strict rest floor the filter retries with the
// emergency floor and attaches a warning.
func (env *Env) candidatePool(inst *models.TaskInstance) ([]*models.Person, []string) {
	universe := env.specialPlatoonFilter(inst)

	strict := env.filterAvailable(universe, inst, env.EffectiveRest(inst))
	if len(strict) > 0 {
		return strict, nil
	}

	effRest := env.EffectiveRest(inst)
	if effRest <= env.EmergencyRest {
		return nil, nil
	}
	relaxed := env.filterAvailable(universe, inst, env.EmergencyRest)
	if len(relaxed) == 0 {
		return nil, nil
	}
	warning := fmt.Sprintf("%s day %d %02d:00: rest floor reduced to %dh to find candidates",
		inst.Name, inst.Day, inst.StartHour, env.EmergencyRest)
	return relaxed, []string{warning}
}

// specialPlatoonFilter keeps special-platoon members for instances that
// require a special platoon and excludes them from everything else.
func (env *Env) specialPlatoonFilter(inst *models.TaskInstance) []*models.Person {
	out := make([]*models.Person, 0, len(env.Persons))
	for _, p := range env.Persons {
		pl := env.Platoons[p.PlatoonID]
		special := pl != nil && pl.IsSpecial
		if special != inst.RequiresSpecialPlatoon {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (env *Env) filterAvailable(universe []*models.Person, inst *models.TaskInstance, rest int) []*models.Person {
	ctx := CheckContext{
		Date:       env.Roster.DateForDay(inst.Day),
		MinRest:    rest,
		IsBaseTask: inst.IsBaseTask,
	}
	var out []*models.Person
	for _, p := range universe {
		if Available(p, inst.Day, inst.StartHour, inst.Length, env.Schedule, ctx) {
			out = append(out, p)
		}
	}
	return out
}

// commit writes the selections into the instance, the per-person schedule,
// and the platoon field-workload counter.
func (env *Env) commit(inst *models.TaskInstance, res *models.DispatchResult) {
	entry := models.ScheduleEntry{
		Day:       inst.Day,
		Start:     inst.StartHour,
		End:       inst.StartHour + inst.Length,
		TaskName:  inst.Name,
		Archetype: inst.Archetype,
		IsBase:    inst.IsBaseTask,
		IsStandby: inst.IsStandbyTask,
	}
	for _, p := range res.All() {
		env.Schedule.Add(p.ID, entry)
	}

	inst.Commanders = ids(res.Commanders)
	inst.Drivers = ids(res.Drivers)
	inst.Soldiers = ids(res.Soldiers)
	inst.PlatoonID = res.PlatoonID

	if res.PlatoonID != "" && !inst.IsBaseTask {
		env.Workload.Add(res.PlatoonID, inst.Length)
	}
}

func ids(persons []*models.Person) []string {
	out := make([]string, 0, len(persons))
	for _, p := range persons {
		out = append(out, p.ID)
	}
	return out
}

// Role-class pools.

func commandersOf(pool []*models.Person) []*models.Person {
	var out []*models.Person
	for _, p := range pool {
		if p.Role.IsCommander() {
			out = append(out, p)
		}
	}
	return out
}

func driversOf(pool []*models.Person) []*models.Person {
	var out []*models.Person
	for _, p := range pool {
		if p.IsDriver() {
			out = append(out, p)
		}
	}
	return out
}

// soldiersOf returns the non-commander pool; includeDrivers controls
// whether drivers may fill soldier slots (standby-B allows it).
func soldiersOf(pool []*models.Person, includeDrivers bool) []*models.Person {
	var out []*models.Person
	for _, p := range pool {
		if p.Role.IsCommander() {
			continue
		}
		if !includeDrivers && p.IsDriver() {
			continue
		}
		out = append(out, p)
	}
	return out
}

func ofPlatoon(pool []*models.Person, platoonID string) []*models.Person {
	var out []*models.Person
	for _, p := range pool {
		if p.PlatoonID == platoonID {
			out = append(out, p)
		}
	}
	return out
}

// pickN selects n persons one slot at a time with exploration, removing each
// pick from the remaining pool.
func (env *Env) pickN(pool []*models.Person, n int, inst *models.TaskInstance) []*models.Person {
	picked := make([]*models.Person, 0, n)
	remaining := append([]*models.Person(nil), pool...)
	for len(picked) < n && len(remaining) > 0 {
		cands := env.Scorer.Rank(remaining, inst, env.Schedule, env.Workload, env.Persons)
		p := env.Scorer.Pick(cands)
		picked = append(picked, p)
		for i, r := range remaining {
			if r.ID == p.ID {
				remaining = append(remaining[:i], remaining[i+1:]...)
				break
			}
		}
	}
	return picked
}

func without(pool []*models.Person, taken []*models.Person) []*models.Person {
	skip := make(map[string]bool, len(taken))
	for _, p := range taken {
		skip[p.ID] = true
	}
	var out []*models.Person
	for _, p := range pool {
		if !skip[p.ID] {
			out = append(out, p)
		}
	}
	return out
}

// platoonOrder ranks platoon IDs for same-platoon selection: platoons
// already holding assignments in the instance's 8-hour block come first,
// most occupied first; ties break on lowest field workload with a small
// random jitter.
func (env *Env) platoonOrder(inst *models.TaskInstance, pool []*models.Person) []string {
	seen := map[string]bool{}
	var idsOrdered []string
	for _, p := range pool {
		if !seen[p.PlatoonID] {
			seen[p.PlatoonID] = true
			idsOrdered = append(idsOrdered, p.PlatoonID)
		}
	}
	sort.Strings(idsOrdered)

	type key struct {
		id        string
		occupancy int
		load      float64
	}
	keys := make([]key, 0, len(idsOrdered))
	for _, id := range idsOrdered {
		jitter := 0.0
		if env.Scorer.Rand != nil {
			jitter = env.Scorer.Rand.Float64()
		}
		keys = append(keys, key{
			id:        id,
			occupancy: blockOccupancy(env.Schedule, env.Persons, id, inst.Day, inst.Block()),
			load:      float64(env.Workload[id]) + jitter,
		})
	}
	sort.SliceStable(keys, func(i, j int) bool {
		if keys[i].occupancy != keys[j].occupancy {
			return keys[i].occupancy > keys[j].occupancy
		}
		return keys[i].load < keys[j].load
	})

	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.id
	}
	return out
}

// dispatchPatrol fills commanders and soldiers (same-platoon when required)
// plus drivers drawn from any platoon. A driver shortfall is a soft success:
// the result carries an empty driver list and a warning.
func dispatchPatrol(env *Env, inst *models.TaskInstance, pool []*models.Person) (*models.DispatchResult, *Failure) {
	if !inst.SamePlatoonRequired {
		return selectMixed(env, inst, pool, "", true)
	}

	var lastFail *Failure
	for _, platoonID := range env.platoonOrder(inst, pool) {
		members := ofPlatoon(pool, platoonID)
		if len(commandersOf(members)) < inst.CommandersNeeded ||
			len(soldiersOf(members, false)) < inst.SoldiersNeeded {
			missing := map[string]int{}
			if n := inst.CommandersNeeded - len(commandersOf(members)); n > 0 {
				missing = shortfall(missing, "commanders", n)
			}
			if n := inst.SoldiersNeeded - len(soldiersOf(members, false)); n > 0 {
				missing = shortfall(missing, "soldiers", n)
			}
			lastFail = &Failure{Kind: models.FailureSoft, Missing: missing}
			continue
		}
		res, fail := selectMixed(env, inst, members, platoonID, false)
		if fail == nil {
			// Drivers may cross platoon lines even in same-platoon mode.
			res.Drivers = env.pickN(driversOf(without(pool, res.All())), inst.DriversNeeded, inst)
			if inst.DriversNeeded > 0 && len(res.Drivers) == 0 {
				res.Warnings = append(res.Warnings,
					fmt.Sprintf("%s day %d: no driver available, returning empty driver list", inst.Name, inst.Day))
			}
			return res, nil
		}
		lastFail = fail
	}
	if lastFail == nil {
		lastFail = &Failure{Kind: models.FailureSoft}
	}
	return nil, lastFail
}

// selectMixed fills a commanders/drivers/soldiers requirement from one pool.
// When platoonID is set it is recorded on the result. Drivers are drawn here
// only when pickDrivers is set; same-platoon callers pick drivers from the
// full cross-platoon pool themselves.
func selectMixed(env *Env, inst *models.TaskInstance, pool []*models.Person, platoonID string, pickDrivers bool) (*models.DispatchResult, *Failure) {
	res := &models.DispatchResult{PlatoonID: platoonID}

	res.Commanders = env.pickN(commandersOf(pool), inst.CommandersNeeded, inst)
	if len(res.Commanders) < inst.CommandersNeeded {
		return nil, &Failure{
			Kind:    models.FailureSoft,
			Missing: shortfall(nil, "commanders", inst.CommandersNeeded-len(res.Commanders)),
		}
	}

	remaining := without(pool, res.Commanders)
	res.Soldiers = env.pickN(soldiersOf(remaining, false), inst.SoldiersNeeded, inst)
	if len(res.Soldiers) < inst.SoldiersNeeded {
		return nil, &Failure{
			Kind:    models.FailureSoft,
			Missing: shortfall(nil, "soldiers", inst.SoldiersNeeded-len(res.Soldiers)),
		}
	}

	if pickDrivers {
		remaining = without(remaining, res.Soldiers)
		res.Drivers = env.pickN(driversOf(remaining), inst.DriversNeeded, inst)
		if inst.DriversNeeded > 0 && len(res.Drivers) == 0 {
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("%s day %d: no driver available, returning empty driver list", inst.Name, inst.Day))
		}
	}
	return res, nil
}

// dispatchGuard selects one non-commander.
func dispatchGuard(env *Env, inst *models.TaskInstance, pool []*models.Person) (*models.DispatchResult, *Failure) {
	nonCommanders := soldiersOf(pool, true)
	picked := env.pickN(nonCommanders, 1, inst)
	if len(picked) == 0 {
		return nil, &Failure{Kind: models.FailureSoft, Missing: shortfall(nil, "soldiers", 1)}
	}
	return &models.DispatchResult{Soldiers: picked}, nil
}

// dispatchStandbyA fills one commander and the soldier complement, with the
// commander and soldiers counted against same-platoon when required and
// drivers optional across platoons, as in patrol.
func dispatchStandbyA(env *Env, inst *models.TaskInstance, pool []*models.Person) (*models.DispatchResult, *Failure) {
	if !inst.SamePlatoonRequired {
		return selectMixed(env, inst, pool, "", true)
	}

	var lastFail *Failure
	for _, platoonID := range env.platoonOrder(inst, pool) {
		members := ofPlatoon(pool, platoonID)
		res, fail := selectMixed(env, inst, members, platoonID, false)
		if fail == nil {
			res.Drivers = env.pickN(driversOf(without(pool, res.All())), inst.DriversNeeded, inst)
			if inst.DriversNeeded > 0 && len(res.Drivers) == 0 {
				res.Warnings = append(res.Warnings,
					fmt.Sprintf("%s day %d: no driver available, returning empty driver list", inst.Name, inst.Day))
			}
			return res, nil
		}
		lastFail = fail
	}
	if lastFail == nil {
		lastFail = &Failure{Kind: models.FailureSoft}
	}
	return nil, lastFail
}

// dispatchStandbyB fills one commander plus a small soldier detail; drivers
// are not requested and are eligible for the soldier slots.
func dispatchStandbyB(env *Env, inst *models.TaskInstance, pool []*models.Person) (*models.DispatchResult, *Failure) {
	res := &models.DispatchResult{}

	res.Commanders = env.pickN(commandersOf(pool), inst.CommandersNeeded, inst)
	if len(res.Commanders) < inst.CommandersNeeded {
		return nil, &Failure{
			Kind:    models.FailureSoft,
			Missing: shortfall(nil, "commanders", inst.CommandersNeeded-len(res.Commanders)),
		}
	}

	soldierPool := soldiersOf(without(pool, res.Commanders), true)
	res.Soldiers = env.pickN(soldierPool, inst.SoldiersNeeded, inst)
	if len(res.Soldiers) < inst.SoldiersNeeded {
		return nil, &Failure{
			Kind:    models.FailureSoft,
			Missing: shortfall(nil, "soldiers", inst.SoldiersNeeded-len(res.Soldiers)),
		}
	}
	return res, nil
}

// dispatchOperations selects one person holding the required certification.
// The certification is a hard filter; with none certified the dispatch fails.
func dispatchOperations(env *Env, inst *models.TaskInstance, pool []*models.Person) (*models.DispatchResult, *Failure) {
	var certified []*models.Person
	for _, p := range pool {
		if inst.RequiredCertification == "" || p.HasCertification(inst.RequiredCertification) {
			certified = append(certified, p)
		}
	}
	picked := env.pickN(certified, 1, inst)
	if len(picked) == 0 {
		return nil, &Failure{Kind: models.FailureSoft, Missing: shortfall(nil, "soldiers", 1)}
	}
	return &models.DispatchResult{Soldiers: picked}, nil
}

// dispatchKitchen fills the full non-commander combatant complement or fails.
func dispatchKitchen(env *Env, inst *models.TaskInstance, pool []*models.Person) (*models.DispatchResult, *Failure) {
	combatants := soldiersOf(pool, false)
	if len(combatants) < inst.SoldiersNeeded {
		return nil, &Failure{
			Kind:    models.FailureSoft,
			Missing: shortfall(nil, "soldiers", inst.SoldiersNeeded-len(combatants)),
		}
	}
	picked := env.pickN(combatants, inst.SoldiersNeeded, inst)
	return &models.DispatchResult{Soldiers: picked}, nil
}

// dispatchDutyOfficer selects one senior commander (platoon-commander,
// sergeant, or squad-commander). In emergency mode it falls back to the
// best-scoring available person of any role and records a warning.
func dispatchDutyOfficer(env *Env, inst *models.TaskInstance, pool []*models.Person) (*models.DispatchResult, *Failure) {
	var seniors []*models.Person
	for _, p := range pool {
		if p.Role.IsSeniorCommander() {
			seniors = append(seniors, p)
		}
	}
	if picked := env.pickN(seniors, 1, inst); len(picked) == 1 {
		return &models.DispatchResult{Commanders: picked}, nil
	}

	if env.Emergency {
		if picked := env.pickN(pool, 1, inst); len(picked) == 1 {
			return &models.DispatchResult{
				Commanders: picked,
				Warnings: []string{fmt.Sprintf("%s day %d: no senior commander available, assigned %s (%s)",
					inst.Name, inst.Day, picked[0].Name, picked[0].Role)},
			}, nil
		}
	}
	return nil, &Failure{Kind: models.FailureSoft, Missing: shortfall(nil, "commanders", 1)}
}
