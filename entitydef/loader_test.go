package entitydef

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reallyoldfogie/wows-replay-go/schema"
)

const testRoot = "testdata/defs"

var testVersion = Version{Major: 0, Minor: 10, Patch: 8, Build: 4157125}

func propertyNames(props []Property) []string {
	names := make([]string, 0, len(props))
	for _, p := range props {
		names = append(names, p.Name)
	}
	return names
}

func methodNames(methods []Method) []string {
	names := make([]string, 0, len(methods))
	for _, m := range methods {
		names = append(names, m.Name)
	}
	return names
}

func loadTestCatalog(t *testing.T) []EntitySpec {
	t.Helper()
	specs, err := LoadCatalog(testVersion, testRoot)
	require.NoError(t, err)
	require.Len(t, specs, 3)
	return specs
}

func TestLoadCatalogEntityOrder(t *testing.T) {
	specs := loadTestCatalog(t)
	assert.Equal(t, "Avatar", specs[0].Name)
	assert.Equal(t, "Vehicle", specs[1].Name)
	assert.Equal(t, "BattleLogic", specs[2].Name)
}

func TestLoadCatalogAvatar(t *testing.T) {
	avatar := loadTestCatalog(t)[0]

	assert.Equal(t, []string{
		"achievementCount", "teamId", "ownShipId", "name", "crewSkills", "accountDBID", "aimState",
	}, propertyNames(avatar.AllProperties))
	assert.Equal(t, []string{
		"achievementCount", "teamId", "ownShipId", "name", "crewSkills",
	}, propertyNames(avatar.ClientProperties))
	assert.Equal(t, []string{
		"teamId", "achievementCount", "ownShipId", "name",
	}, propertyNames(avatar.ClientPropertiesInternal))
	assert.Equal(t, []string{"aimState"}, propertyNames(avatar.CellProperties))
	assert.Equal(t, []string{"crewSkills", "accountDBID"}, propertyNames(avatar.BaseProperties))

	assert.Equal(t, []string{"logout", "requestStats"}, methodNames(avatar.BaseMethods))
	assert.Equal(t, []string{"setAiming"}, methodNames(avatar.CellMethods))
	assert.Equal(t, []string{
		"onRibbon", "onBattleEnd", "updateCrew", "onAchievementEarned",
		"onChatMessage", "receiveDamageStat", "setCameraTarget",
	}, methodNames(avatar.ClientMethods))
}

func TestLoadCatalogVehicle(t *testing.T) {
	vehicle := loadTestCatalog(t)[1]

	assert.Len(t, vehicle.AllProperties, 7)
	assert.Len(t, vehicle.ClientProperties, 6)
	assert.Equal(t, []string{
		"teamId", "isAlive", "visibilityFlags", "serverSpeedRaw", "health", "shipConfig",
	}, propertyNames(vehicle.ClientPropertiesInternal))
	assert.Equal(t, []string{"targetLocalPos"}, propertyNames(vehicle.CellProperties))
	assert.Empty(t, vehicle.BaseProperties)
	assert.Empty(t, vehicle.BaseMethods)
	assert.Empty(t, vehicle.CellMethods)
	assert.Equal(t, []string{"onShot", "onDeath", "receiveDamagesOnShip"}, methodNames(vehicle.ClientMethods))
}

func TestLoadCatalogTypes(t *testing.T) {
	specs := loadTestCatalog(t)
	avatar, vehicle, logic := specs[0], specs[1], specs[2]

	_, teamID, ok := avatar.ClientProperty("teamId")
	require.True(t, ok)
	assert.Equal(t, &schema.Primitive{Kind: schema.KindInt8}, teamID.Type)
	assert.Equal(t, FlagAllClients, teamID.Flag)

	idx, stat, ok := avatar.ClientMethod("receiveDamageStat")
	require.True(t, ok)
	assert.Equal(t, 5, idx)
	require.Len(t, stat.Args, 1)
	assert.Equal(t, "stats", stat.Args[0].Name)
	assert.Equal(t,
		"Array<-1, FixedDict<false, [category: Uint8, count: Uint32, damage: Float64]>>",
		schema.TypeString(stat.Args[0].Type))

	_, chat, ok := avatar.ClientMethod("onChatMessage")
	require.True(t, ok)
	require.Len(t, chat.Args, 2)
	assert.Equal(t, "", chat.Args[0].Name)

	_, damages, ok := vehicle.ClientMethod("receiveDamagesOnShip")
	require.True(t, ok)
	assert.Equal(t,
		"Array<-1, FixedDict<false, [vehicleID: Int32, damage: Float32]>>",
		schema.TypeString(damages.Args[0].Type))

	// aliases declared inside an entity file
	timer, ok := logic.ClientPropertyByIndex(1)
	require.True(t, ok)
	assert.Equal(t, "timer", timer.Name)
	assert.Equal(t, "FixedDict<false, [stage: Uint8, timeLeft: Float32]>", schema.TypeString(timer.Type))

	_, ok = logic.ClientPropertyByIndex(3)
	assert.False(t, ok)
	_, ok = logic.ClientMethodByIndex(-1)
	assert.False(t, ok)
}

func TestLocalAliasesStayLocal(t *testing.T) {
	aliases, err := LoadAliases(filepath.Join(ScriptsDir(testVersion, testRoot), entityDefsDir, aliasFile), nil)
	require.NoError(t, err)
	assert.Contains(t, aliases, "DAMAGE_STAT")
	assert.NotContains(t, aliases, "STAGE")
}

func TestLoadCatalogIsDeterministic(t *testing.T) {
	assert.Equal(t, loadTestCatalog(t), loadTestCatalog(t))
}

func TestLoadCatalogMissingVersion(t *testing.T) {
	_, err := LoadCatalog(Version{Major: 9, Minor: 9, Patch: 9}, testRoot)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingDefinitions))
}

func copyTree(t *testing.T, src, dst string) {
	t.Helper()
	err := filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0o644)
	})
	require.NoError(t, err)
}

func TestLoadCatalogMissingDefinitionFile(t *testing.T) {
	root := t.TempDir()
	copyTree(t, testRoot, root)
	require.NoError(t, os.Remove(filepath.Join(ScriptsDir(testVersion, root), entityDefsDir, "Vehicle.def")))

	specs, err := LoadCatalog(testVersion, root)
	require.Error(t, err)
	assert.Nil(t, specs)
	assert.True(t, errors.Is(err, ErrMissingDefinitions))
	assert.Contains(t, err.Error(), "Vehicle")
}

func TestLoadCatalogMissingAliases(t *testing.T) {
	root := t.TempDir()
	copyTree(t, testRoot, root)
	require.NoError(t, os.Remove(filepath.Join(ScriptsDir(testVersion, root), entityDefsDir, aliasFile)))

	_, err := LoadCatalog(testVersion, root)
	assert.True(t, errors.Is(err, ErrMissingDefinitions))
}

func TestImplementsCycle(t *testing.T) {
	root := t.TempDir()
	scripts := ScriptsDir(testVersion, root)
	defs := filepath.Join(scripts, entityDefsDir)
	require.NoError(t, os.MkdirAll(filepath.Join(defs, interfacesDir), 0o755))

	files := map[string]string{
		filepath.Join(scripts, entitiesFile): `<root><ClientServerEntities><Thing/></ClientServerEntities></root>`,
		filepath.Join(defs, aliasFile):       `<root/>`,
		filepath.Join(defs, "Thing.def"): `<root>
			<Implements><Interface>A</Interface><Interface>B</Interface></Implements>
		</root>`,
		filepath.Join(defs, interfacesDir, "A.def"): `<root>
			<Implements><Interface>B</Interface></Implements>
			<ClientMethods><fromA><Arg>UINT8</Arg></fromA></ClientMethods>
		</root>`,
		filepath.Join(defs, interfacesDir, "B.def"): `<root>
			<Implements><Interface>A</Interface></Implements>
			<ClientMethods><fromB><Arg>UINT16</Arg></fromB></ClientMethods>
		</root>`,
	}
	for path, content := range files {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	specs, err := LoadCatalog(testVersion, root)
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, []string{"fromA", "fromB"}, methodNames(specs[0].ClientMethods))
}

func TestFlags(t *testing.T) {
	assert.Equal(t, FlagCellPublicAndOwn, ParseFlag(" cell_public_and_own "))
	assert.Equal(t, FlagUnknown, ParseFlag("EVERYWHERE"))
	assert.Equal(t, "OTHER_CLIENTS", FlagOtherClients.String())
	assert.Equal(t, "UNKNOWN", FlagUnknown.String())

	assert.True(t, FlagBaseAndClient.IsClient())
	assert.True(t, FlagBaseAndClient.IsBase())
	assert.False(t, FlagBaseAndClient.IsCell())
	assert.True(t, FlagCellPublic.IsCell())
	assert.False(t, FlagCellPublic.IsClient())
	assert.False(t, FlagUnknown.IsClient())
}
